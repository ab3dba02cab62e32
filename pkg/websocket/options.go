package websocket

import (
	"log/slog"
	"net/http"
	"time"
)

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithConfig replaces the hub settings. Zero fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(h *Hub) {
		def := DefaultConfig()
		if cfg.PingInterval <= 0 {
			cfg.PingInterval = def.PingInterval
		}
		if cfg.WriteTimeout <= 0 {
			cfg.WriteTimeout = def.WriteTimeout
		}
		if cfg.ReadLimit <= 0 {
			cfg.ReadLimit = def.ReadLimit
		}
		if cfg.OutboxSize <= 0 {
			cfg.OutboxSize = def.OutboxSize
		}
		h.cfg = cfg
	}
}

// WithPingInterval sets the liveness sweep period.
func WithPingInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.cfg.PingInterval = d
		}
	}
}

// WithCheckOrigin overrides the upgrade origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(h *Hub) {
		if fn != nil {
			h.checkOrigin = fn
		}
	}
}
