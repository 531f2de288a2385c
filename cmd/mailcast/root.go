package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/bulkmail/pkg/config"
	"github.com/dmitrymomot/bulkmail/pkg/logger"
	"github.com/dmitrymomot/bulkmail/pkg/mailer"
	"github.com/dmitrymomot/bulkmail/pkg/mailer/logsender"
	"github.com/dmitrymomot/bulkmail/pkg/mailer/resend"
)

type rootOptions struct {
	configPath   string
	campaignPath string
	dryRun       bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "mailcast",
		Short:        "Send one templated email to many recipients",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML configuration file (optional)")
	root.PersistentFlags().StringVar(&opts.campaignPath, "campaign", "", "path to YAML campaign file")
	_ = root.MarkPersistentFlagRequired("campaign")

	send := &cobra.Command{
		Use:   "send",
		Short: "Build the campaign and send it in one batch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSend(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	send.Flags().BoolVar(&opts.dryRun, "dry-run", false, "log emails instead of sending them")

	preview := &cobra.Command{
		Use:   "preview",
		Short: "Build the campaign and print the wire records as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPreview(cmd.OutOrStdout(), opts)
		},
	}

	root.AddCommand(send, preview)
	return root
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// buildMailer loads configuration and the campaign, then runs Build.
func buildMailer(opts *rootOptions) (*mailer.Mailer, *slog.Logger, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if opts.dryRun {
		cfg.Mailer.Transport = mailer.TransportLog
	}

	// stdout is reserved for command output.
	log := logger.NewWithWriter(os.Stderr, cfg.Logger)
	client := mailer.NewFromConfig(newTransport(cfg, log), cfg.Mailer, mailer.WithLogger(log))

	campaign, err := LoadCampaign(opts.campaignPath)
	if err != nil {
		return nil, nil, err
	}
	m, err := campaign.Mailer(client)
	if err != nil {
		return nil, nil, err
	}
	if err := m.Build(); err != nil {
		return nil, nil, err
	}

	log.Info("campaign built", slog.Int("emails", len(m.Emails())))
	return m, log, nil
}

func newTransport(cfg *config.Config, log *slog.Logger) mailer.Transport {
	if cfg.Mailer.Transport == mailer.TransportLog {
		return logsender.New(log)
	}
	return resend.New(cfg.Resend, resend.WithLogger(log))
}

func runSend(ctx context.Context, out io.Writer, opts *rootOptions) error {
	m, log, err := buildMailer(opts)
	if err != nil {
		return err
	}

	res, err := m.Send(ctx)
	if err != nil {
		log.Error("campaign send failed", slog.String("error", err.Error()))
		return err
	}

	_, err = fmt.Fprintf(out, "sent %d emails\n", len(res.IDs))
	return err
}

func runPreview(out io.Writer, opts *rootOptions) error {
	m, _, err := buildMailer(opts)
	if err != nil {
		return err
	}

	wires := make([]mailer.WireEmail, 0, len(m.Emails()))
	for i, email := range m.Emails() {
		wire, err := email.ToWire()
		if err != nil {
			return fmt.Errorf("email %d: %w", i, err)
		}
		wires = append(wires, wire)
	}

	enc := yaml.NewEncoder(out)
	if err := enc.Encode(wires); err != nil {
		return err
	}
	return enc.Close()
}
