package websocket

import "time"

// Config holds WebSocket hub settings.
type Config struct {
	PingInterval   time.Duration `env:"WS_PING_INTERVAL" envDefault:"30s"`
	WriteTimeout   time.Duration `env:"WS_WRITE_TIMEOUT" envDefault:"10s"`
	ReadLimit      int64         `env:"WS_READ_LIMIT" envDefault:"4096"`
	OutboxSize     int           `env:"WS_OUTBOX_SIZE" envDefault:"64"`
	AllowedOrigins []string      `env:"WS_ALLOWED_ORIGINS" envSeparator:","`
}

// DefaultConfig returns the settings used when no Config is supplied.
func DefaultConfig() Config {
	return Config{
		PingInterval: 30 * time.Second,
		WriteTimeout: 10 * time.Second,
		ReadLimit:    4096,
		OutboxSize:   64,
	}
}
