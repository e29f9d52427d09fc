package webhook

import "time"

// Config holds the push target settings.
type Config struct {
	URL        string        `env:"PUSH_WEBHOOK_URL"`
	Secret     string        `env:"PUSH_WEBHOOK_SECRET"`
	Timeout    time.Duration `env:"PUSH_WEBHOOK_TIMEOUT" envDefault:"10s"`
	MaxRetries int           `env:"PUSH_WEBHOOK_MAX_RETRIES" envDefault:"0"`

	CircuitFailures int           `env:"PUSH_CIRCUIT_FAILURES" envDefault:"5"`
	CircuitRecovery time.Duration `env:"PUSH_CIRCUIT_RECOVERY" envDefault:"30s"`
}

// Enabled reports whether a push URL is configured.
func (c Config) Enabled() bool {
	return c.URL != ""
}
