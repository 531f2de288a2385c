// Package logger builds the structured loggers used by the mailer packages.
//
// Loggers are log/slog loggers with a JSON (or text) handler, decorated with
// context extractors so request-scoped values show up on every record.
// BatchIDExtractor is always installed: records logged while a Mailer sends
// carry the batch_id of that send.
//
//	log := logger.New(logger.Config{Level: "debug"})
//	client := mailer.New(transport, mailer.WithLogger(log))
//
// When Config.SentryDSN is set, warnings and errors are also forwarded to
// Sentry. An empty DSN or a failed Sentry init falls back to stdout only.
package logger
