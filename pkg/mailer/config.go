package mailer

// Config holds mailer configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	DefaultSender string `env:"MAILER_DEFAULT_SENDER" yaml:"default_sender"`
	Transport     string `env:"MAILER_TRANSPORT" yaml:"transport"`
}

// Transport names accepted in Config.Transport.
const (
	TransportResend = "resend"
	TransportLog    = "log"
)
