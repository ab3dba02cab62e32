package sse

import (
	"log/slog"
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
		if cfg.HeartbeatInterval <= 0 {
			cfg.HeartbeatInterval = h.cfg.HeartbeatInterval
		}
		if cfg.OutboxSize <= 0 {
			cfg.OutboxSize = h.cfg.OutboxSize
		}
		h.cfg = cfg
	}
}

// WithHeartbeatInterval sets the keep-alive period.
func WithHeartbeatInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.cfg.HeartbeatInterval = d
		}
	}
}

// WithClock overrides the time source used for heartbeat timestamps.
func WithClock(now func() time.Time) Option {
	return func(h *Hub) {
		if now != nil {
			h.now = now
		}
	}
}
