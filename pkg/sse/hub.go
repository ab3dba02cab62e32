package sse

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/realtime"
)

// Hub serves event streams to clients that cannot hold a WebSocket.
type Hub struct {
	registry *realtime.Registry
	auth     *realtime.Authenticator
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	closed  bool
	started bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewHub creates a hub that authenticates clients with auth.
func NewHub(auth *realtime.Authenticator, opts ...Option) *Hub {
	h := &Hub{
		auth:   auth,
		cfg:    DefaultConfig(),
		logger: slog.Default(),
		now:    time.Now,
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("sse"))
	h.registry = realtime.NewRegistry(realtime.WithRegistryLogger(h.logger))
	return h
}

// Start launches the heartbeat. Calling it more than once is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started || h.closed {
		return
	}
	h.started = true
	h.wg.Add(1)
	go h.heartbeat()
}

func (h *Hub) heartbeat() {
	defer h.wg.Done()
	ticker := time.NewTicker(h.cfg.HeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.beat()
		}
	}
}

// beat queues a heartbeat on every stream and drops streams that cannot take it.
func (h *Hub) beat() {
	e := realtime.Event{
		Type: realtime.EventHeartbeat,
		Data: realtime.HeartbeatPayload{Timestamp: h.now().UnixMilli()},
	}
	h.registry.Each(func(c realtime.Conn) {
		if err := c.Send(e); err != nil {
			h.logger.Debug("dropping stream", logger.ConnectionID(c.ID()), logger.Error(err))
			h.registry.Unregister(c)
			_ = c.Close()
		}
	})
}

// SendToUser delivers the event to every stream of the user.
func (h *Hub) SendToUser(ctx context.Context, tenantID, userID string, e realtime.Event) bool {
	return h.registry.SendToUser(ctx, tenantID, userID, e)
}

// SendToTenant delivers the event to every stream of the tenant.
func (h *Hub) SendToTenant(ctx context.Context, tenantID string, e realtime.Event) int {
	return h.registry.SendToTenant(ctx, tenantID, e)
}

// Count returns the number of open streams.
func (h *Hub) Count() int {
	return h.registry.Count()
}

// CountForTenant returns the number of open streams of the tenant.
func (h *Hub) CountForTenant(tenantID string) int {
	return h.registry.CountForTenant(tenantID)
}

// CountForUser returns the number of open streams of the user.
func (h *Hub) CountForUser(tenantID, userID string) int {
	return h.registry.CountForUser(tenantID, userID)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, realtime.ErrMissingTenant):
		return http.StatusBadRequest
	case errors.Is(err, realtime.ErrTenantMismatch):
		return http.StatusForbidden
	default:
		return http.StatusUnauthorized
	}
}

// ServeHTTP opens an event stream and blocks until the client leaves or the
// hub shuts down.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, err := h.auth.Authenticate(r)
	if err != nil {
		h.logger.InfoContext(r.Context(), "rejected stream", logger.Error(err))
		http.Error(w, http.StatusText(statusFor(err)), statusFor(err))
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	// Streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
	c := newConn(datastar.NewSSE(w, r), key, h.cfg.OutboxSize)
	_ = c.Send(realtime.Event{
		Type: realtime.EventConnected,
		Data: realtime.ConnectedPayload{ConnectionID: c.id},
	})
	h.registry.Register(c)
	h.wg.Add(1)
	h.mu.Unlock()
	defer h.wg.Done()

	log := h.logger.With(
		logger.ConnectionID(c.id),
		logger.TenantID(key.TenantID),
		logger.UserID(key.UserID),
	)
	log.InfoContext(r.Context(), "stream opened")

	if err := c.pump(r.Context()); err != nil {
		log.Debug("stream write failed", logger.Error(err))
	}
	h.registry.Unregister(c)
	log.Info("stream closed")
}

// Shutdown stops the heartbeat, sends a shutdown event to every stream and
// ends them. It waits for open streams to finish or ctx to expire. Safe to
// call more than once.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		close(h.stop)
	}
	h.mu.Unlock()

	conns := h.registry.Drain()
	for _, c := range conns {
		_ = c.Send(realtime.Event{Type: realtime.EventShutdown})
		_ = c.Close()
	}
	if len(conns) > 0 {
		h.logger.InfoContext(ctx, "closed streams on shutdown", slog.Int("count", len(conns)))
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
