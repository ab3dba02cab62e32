package delivery

import "time"

// Config holds retry and batching settings.
type Config struct {
	MaxAttempts int           `env:"DELIVERY_MAX_ATTEMPTS" envDefault:"3"`
	BackoffBase time.Duration `env:"DELIVERY_BACKOFF_BASE" envDefault:"2s"`
	Concurrency int           `env:"DELIVERY_CONCURRENCY" envDefault:"1"`
	EmailFooter string        `env:"DELIVERY_EMAIL_FOOTER"`
}

const (
	DefaultMaxAttempts = 3
	DefaultBackoffBase = 2 * time.Second
)

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		BackoffBase: DefaultBackoffBase,
		Concurrency: 1,
	}
}
