// Package logsender implements a mailer.Transport that writes every email
// to a structured logger instead of delivering it.
// Use it in development and for dry runs.
package logsender

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/bulkmail/pkg/mailer"
)

// Transport logs emails. It needs no credential, so HasCredential is always true.
type Transport struct {
	logger *slog.Logger
}

// New creates a transport that logs to l.
func New(l *slog.Logger) *Transport {
	if l == nil {
		l = slog.Default()
	}
	return &Transport{logger: l.With(slog.String("transport", "log"))}
}

// SetCredential is a no-op: logging needs no credential.
func (t *Transport) SetCredential(string) {}

// HasCredential always reports true.
func (t *Transport) HasCredential() bool {
	return true
}

// SendOne logs one email and returns a generated id.
func (t *Transport) SendOne(ctx context.Context, email mailer.WireEmail) (mailer.Result, error) {
	return mailer.Result{IDs: []string{t.log(ctx, email)}}, nil
}

// SendBatch logs every email and returns one generated id per email.
func (t *Transport) SendBatch(ctx context.Context, emails []mailer.WireEmail) (mailer.Result, error) {
	res := mailer.Result{IDs: make([]string, 0, len(emails))}
	for _, email := range emails {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.IDs = append(res.IDs, t.log(ctx, email))
	}
	return res, nil
}

func (t *Transport) log(ctx context.Context, email mailer.WireEmail) string {
	id := uuid.NewString()

	kind, body := mailer.ContentTypeText, email.Text
	if email.HTML != "" {
		kind, body = mailer.ContentTypeHTML, email.HTML
	}

	t.logger.InfoContext(ctx, "email sent",
		slog.String("id", id),
		slog.String("from", email.From),
		slog.String("to", email.To),
		slog.String("subject", email.Subject),
		slog.String("content_type", kind.String()),
		slog.Int("body_length", len(body)),
	)
	t.logger.DebugContext(ctx, "email body", slog.String("id", id), slog.String("body", body))
	return id
}
