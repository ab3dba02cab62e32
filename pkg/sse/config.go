package sse

import "time"

// Config holds SSE hub settings.
type Config struct {
	HeartbeatInterval time.Duration `env:"SSE_HEARTBEAT_INTERVAL" envDefault:"30s"`
	OutboxSize        int           `env:"SSE_OUTBOX_SIZE" envDefault:"64"`
}

// DefaultConfig returns the settings used when no Config is supplied.
func DefaultConfig() Config {
	return Config{
		HeartbeatInterval: 30 * time.Second,
		OutboxSize:        64,
	}
}
