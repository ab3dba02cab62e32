package broadcast

import "log/slog"

// Option configures a Broadcaster.
type Option func(*Broadcaster)

// WithPersistent sets the WebSocket hub. Pass an untyped nil to leave it out.
func WithPersistent(h Hub) Option {
	return func(b *Broadcaster) { b.persistent = h }
}

// WithStreaming sets the SSE hub. Pass an untyped nil to leave it out.
func WithStreaming(h Hub) Option {
	return func(b *Broadcaster) { b.streaming = h }
}

// WithStore sets the collaborator used by CreateAndBroadcast.
func WithStore(s Store) Option {
	return func(b *Broadcaster) { b.store = s }
}

// WithLogger sets the broadcaster logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Broadcaster) {
		if l != nil {
			b.logger = l
		}
	}
}
