package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Config holds logger configuration.
type Config struct {
	Level             string `env:"LOG_LEVEL" yaml:"level"`
	Format            string `env:"LOG_FORMAT" yaml:"format"`
	SentryDSN         string `env:"SENTRY_DSN" yaml:"sentry_dsn"`
	SentryEnvironment string `env:"SENTRY_ENVIRONMENT" yaml:"sentry_environment"`
}

// New creates a logger writing to stdout. BatchIDExtractor is always installed.
// When cfg.SentryDSN is set, warnings and errors are also sent to Sentry.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return NewWithWriter(os.Stdout, cfg, extractors...)
}

// NewWithWriter is New with a custom output.
func NewWithWriter(w io.Writer, cfg Config, extractors ...ContextExtractor) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	if cfg.SentryDSN != "" {
		handler = withSentry(handler, cfg)
	}

	extractors = append([]ContextExtractor{BatchIDExtractor}, extractors...)
	return slog.New(NewLogHandlerDecorator(handler, extractors...))
}

// withSentry fans records out to Sentry. If the SDK cannot be initialized
// the error is logged and base is returned unchanged.
func withSentry(base slog.Handler, cfg Config) slog.Handler {
	env := cfg.SentryEnvironment
	if env == "" {
		env = "production"
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: env,
		EnableLogs:  true,
	}); err != nil {
		slog.New(base).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return base
	}

	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background())

	return fanoutHandler{base, sentryHandler}
}

// Flush waits up to timeout for queued Sentry events and logs to be delivered.
// It reports whether everything was sent. Without an initialized Sentry client
// there is nothing to deliver and it returns true at once.
// Call it before the process exits: os.Exit skips deferred calls.
func Flush(timeout time.Duration) bool {
	if sentry.CurrentHub().Client() == nil {
		return true
	}
	return sentry.Flush(timeout)
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewNope creates a logger that discards all output.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
