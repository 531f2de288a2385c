package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/bulkmail/pkg/mailer"
)

// Campaign is the YAML description of one bulk send.
type Campaign struct {
	From         string              `yaml:"from"`
	Subject      string              `yaml:"subject"`
	Message      string              `yaml:"message"`
	Template     string              `yaml:"template"` // relative to the campaign file
	Recipients   []string            `yaml:"recipients"`
	TemplateData []map[string]string `yaml:"template_data"`

	dir string
}

// LoadCampaign reads a campaign file.
func LoadCampaign(path string) (*Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaign: %w", err)
	}

	var c Campaign
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse campaign: %w", err)
	}
	c.dir = filepath.Dir(path)
	return &c, nil
}

// Mailer configures a mailer from the campaign. A template file is applied
// first so explicit from, subject and message values override it.
func (c *Campaign) Mailer(client *mailer.Client) (*mailer.Mailer, error) {
	m := client.NewMailer()

	if c.Template != "" {
		path := c.Template
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.dir, path)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template: %w", err)
		}
		m.Template(content)
	}

	if c.From != "" {
		m.From(c.From)
	}
	if c.Subject != "" {
		m.Subject(c.Subject)
	}
	if c.Message != "" {
		m.Message(c.Message)
	}
	if len(c.Recipients) > 0 {
		m.AddRecipient(mailer.AddressList(c.Recipients))
	}
	if len(c.TemplateData) > 0 {
		records := make(mailer.TemplateDataList, len(c.TemplateData))
		for i, d := range c.TemplateData {
			records[i] = mailer.TemplateData(d)
		}
		m.AddRecipient(records)
	}

	if err := m.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
