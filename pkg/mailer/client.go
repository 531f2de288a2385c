package mailer

import (
	"log/slog"
	"sync"

	"github.com/dmitrymomot/bulkmail/pkg/logger"
)

// Client holds the state shared by every Email and Mailer it creates:
// the transport (which owns the API key) and the default sender.
type Client struct {
	transport Transport
	logger    *slog.Logger

	defaultSender string
	mu            sync.RWMutex
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for build and send events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDefaultSender sets the sender used by emails and mailers that never call From.
// An invalid address is logged and ignored.
func WithDefaultSender(address string) Option {
	return func(c *Client) {
		if address == "" {
			return
		}
		if err := ValidateAddress(address); err != nil {
			c.logger.Warn("ignoring invalid default sender", slog.String("address", address))
			return
		}
		c.defaultSender = address
	}
}

// New creates a client that dispatches through transport.
func New(transport Transport, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		logger:    logger.NewNope(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig creates a client from configuration values.
// Options are applied first, so an invalid cfg.DefaultSender is reported
// through the logger given with WithLogger. An explicit WithDefaultSender
// option wins over cfg.DefaultSender.
func NewFromConfig(transport Transport, cfg Config, opts ...Option) *Client {
	c := New(transport, opts...)
	if c.DefaultSender() == "" {
		WithDefaultSender(cfg.DefaultSender)(c)
	}
	return c
}

// SetAPIKey forwards key to the transport's credential slot.
func (c *Client) SetAPIKey(key string) {
	c.transport.SetCredential(key)
}

// HasAPIKey reports whether the transport has a credential.
func (c *Client) HasAPIKey() bool {
	return c.transport.HasCredential()
}

// SetDefaultSender validates and stores the default sender.
// Emails and mailers created afterwards start with it as their sender.
func (c *Client) SetDefaultSender(address string) error {
	if err := ValidateAddress(address); err != nil {
		return err
	}
	c.mu.Lock()
	c.defaultSender = address
	c.mu.Unlock()
	return nil
}

// DefaultSender returns the default sender, or "" when none is set.
func (c *Client) DefaultSender() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaultSender
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// NewEmail returns an empty plain-text email from the default sender.
func (c *Client) NewEmail() *Email {
	return &Email{
		client:      c,
		from:        c.DefaultSender(),
		contentType: ContentTypeText,
	}
}

// EmailFromProps returns an email holding exactly props.
// No field is validated until ToWire.
func (c *Client) EmailFromProps(props EmailProps) *Email {
	return &Email{
		client:      c,
		to:          props.To,
		from:        props.From,
		subject:     props.Subject,
		body:        props.Body,
		contentType: props.ContentType,
	}
}

// NewMailer returns an empty mailer from the default sender.
func (c *Client) NewMailer() *Mailer {
	return &Mailer{
		client: c,
		from:   c.DefaultSender(),
	}
}

// MailerFromProps returns a mailer holding exactly props.
func (c *Client) MailerFromProps(props MailerProps) *Mailer {
	m := &Mailer{
		client:          c,
		from:            props.From,
		subjectTemplate: props.SubjectTemplate,
		messageTemplate: props.MessageTemplate,
		recipients:      append([]string(nil), props.Recipients...),
		subjects:        append([]string(nil), props.Subjects...),
		emails:          append([]*Email(nil), props.Emails...),
	}
	for _, data := range props.TemplateData {
		m.templateData = append(m.templateData, data.clone())
	}
	return m
}
