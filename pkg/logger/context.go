package logger

import (
	"context"
	"log/slog"
)

type batchIDKey struct{}

// WithBatchID returns a context carrying the id of a batch send.
// Mailer.Send tags every send with a fresh id so the records of one
// campaign run can be told apart from a retry or a concurrent run.
func WithBatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, batchIDKey{}, id)
}

// BatchID returns the batch id stored in ctx, if any.
func BatchID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(batchIDKey{}).(string)
	return id, ok && id != ""
}

// BatchIDExtractor adds a "batch_id" attribute to records logged with a batch context.
// NewWithWriter always installs it.
func BatchIDExtractor(ctx context.Context) (slog.Attr, bool) {
	if id, ok := BatchID(ctx); ok {
		return slog.String("batch_id", id), true
	}
	return slog.Attr{}, false
}
