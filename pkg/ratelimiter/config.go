package ratelimiter

import (
	"fmt"
	"time"
)

// Config defines one token bucket. Zero Capacity disables limiting.
type Config struct {
	Capacity       int           `env:"CAPACITY" envDefault:"60"`        // Capacity is the burst size.
	RefillRate     int           `env:"REFILL_RATE" envDefault:"1"`      // RefillRate is the number of tokens added per interval.
	RefillInterval time.Duration `env:"REFILL_INTERVAL" envDefault:"1s"` // RefillInterval is how often tokens are added.
}

// Enabled reports whether the bucket limits anything.
func (c Config) Enabled() bool { return c.Capacity > 0 }

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}
