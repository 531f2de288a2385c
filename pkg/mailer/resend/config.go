package resend

// Config holds Resend transport configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	APIKey string `env:"RESEND_API_KEY" yaml:"api_key"`
}
