// Package resend implements mailer.Transport on top of the Resend API.
package resend

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/bulkmail/pkg/logger"
	"github.com/dmitrymomot/bulkmail/pkg/mailer"
)

// EmailsAPI is the single-message part of the Resend client.
type EmailsAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// BatchAPI is the batch part of the Resend client.
type BatchAPI interface {
	SendWithContext(ctx context.Context, params []*resend.SendEmailRequest) (*resend.BatchEmailResponse, error)
}

// ClientFactory builds API clients for an API key.
type ClientFactory func(apiKey string) (EmailsAPI, BatchAPI)

// Transport implements mailer.Transport using the Resend API.
// The API key can be replaced at any time; requests use the key current at call time.
type Transport struct {
	factory ClientFactory
	logger  *slog.Logger

	mu     sync.RWMutex
	apiKey string
	emails EmailsAPI
	batch  BatchAPI
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the transport logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithClientFactory replaces the function that builds Resend API clients.
func WithClientFactory(f ClientFactory) Option {
	return func(t *Transport) {
		if f != nil {
			t.factory = f
		}
	}
}

// New creates a Resend transport. A non-empty cfg.APIKey is installed as the credential.
func New(cfg Config, opts ...Option) *Transport {
	t := &Transport{
		factory: defaultFactory,
		logger:  logger.NewNope(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if cfg.APIKey != "" {
		t.SetCredential(cfg.APIKey)
	}
	return t
}

// NewWithClients creates a transport that always talks to the given clients.
// It has no credential until SetCredential is called. Used for testing.
func NewWithClients(emails EmailsAPI, batch BatchAPI, opts ...Option) *Transport {
	factory := func(string) (EmailsAPI, BatchAPI) { return emails, batch }
	return New(Config{}, append(opts, WithClientFactory(factory))...)
}

func defaultFactory(apiKey string) (EmailsAPI, BatchAPI) {
	client := resend.NewClient(apiKey)
	return client.Emails, client.Batch
}

// SetCredential implements mailer.Transport. An empty key clears the credential.
func (t *Transport) SetCredential(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.apiKey = key
	if key == "" {
		t.emails, t.batch = nil, nil
		return
	}
	t.emails, t.batch = t.factory(key)
}

// HasCredential implements mailer.Transport.
func (t *Transport) HasCredential() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.apiKey != ""
}

func (t *Transport) clients() (EmailsAPI, BatchAPI, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.emails, t.batch, t.apiKey != ""
}

// SendOne implements mailer.Transport.
func (t *Transport) SendOne(ctx context.Context, email mailer.WireEmail) (mailer.Result, error) {
	emails, _, ok := t.clients()
	if !ok {
		return mailer.Result{}, mailer.ErrAPIKeyNotSet
	}

	resp, err := emails.SendWithContext(ctx, toRequest(email))
	if err != nil {
		return mailer.Result{}, fmt.Errorf("resend: failed to send email: %w", err)
	}

	t.logger.DebugContext(ctx, "resend email accepted", slog.String("id", resp.Id))
	return mailer.Result{IDs: []string{resp.Id}}, nil
}

// MaxBatchSize is the largest number of emails Resend accepts in one batch request.
const MaxBatchSize = 100

// SendBatch implements mailer.Transport. An empty batch is not submitted.
// Batches larger than MaxBatchSize are split into consecutive requests of at
// most MaxBatchSize emails. If a request fails, the ids of the emails accepted
// by earlier requests are returned along with the error.
func (t *Transport) SendBatch(ctx context.Context, emails []mailer.WireEmail) (mailer.Result, error) {
	_, batch, ok := t.clients()
	if !ok {
		return mailer.Result{}, mailer.ErrAPIKeyNotSet
	}
	if len(emails) == 0 {
		return mailer.Result{}, nil
	}

	res := mailer.Result{IDs: make([]string, 0, len(emails))}
	for chunk := range slices.Chunk(emails, MaxBatchSize) {
		reqs := make([]*resend.SendEmailRequest, len(chunk))
		for i, email := range chunk {
			reqs[i] = toRequest(email)
		}

		resp, err := batch.SendWithContext(ctx, reqs)
		if err != nil {
			return res, fmt.Errorf("resend: failed to send batch: %w", err)
		}
		for _, d := range resp.Data {
			res.IDs = append(res.IDs, d.Id)
		}
	}

	t.logger.DebugContext(ctx, "resend batch accepted", slog.Int("ids", len(res.IDs)))
	return res, nil
}

func toRequest(email mailer.WireEmail) *resend.SendEmailRequest {
	return &resend.SendEmailRequest{
		From:    email.From,
		To:      []string{email.To},
		Subject: email.Subject,
		Text:    email.Text,
		Html:    email.HTML,
	}
}
