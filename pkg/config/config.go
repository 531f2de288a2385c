// Package config loads application configuration from environment variables,
// optionally layered over a YAML file.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/bulkmail/pkg/logger"
	"github.com/dmitrymomot/bulkmail/pkg/mailer"
	"github.com/dmitrymomot/bulkmail/pkg/mailer/resend"
)

// Config holds the complete application configuration.
type Config struct {
	Mailer mailer.Config `yaml:"mailer"`
	Resend resend.Config `yaml:"resend"`
	Logger logger.Config `yaml:"logger"`
}

// Load reads configuration from environment variables over the defaults.
func Load() (*Config, error) {
	cfg := defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a YAML file over the defaults, then applies environment
// variables on top. Environment variables always win.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Mailer: mailer.Config{Transport: mailer.TransportResend},
		Logger: logger.Config{Level: "info", Format: "json"},
	}
}

func (c *Config) validate() error {
	switch c.Mailer.Transport {
	case mailer.TransportResend, mailer.TransportLog:
	default:
		return fmt.Errorf("unknown mailer transport %q", c.Mailer.Transport)
	}
	if c.Mailer.DefaultSender != "" {
		if err := mailer.ValidateAddress(c.Mailer.DefaultSender); err != nil {
			return fmt.Errorf("default sender: %w", err)
		}
	}
	return nil
}
