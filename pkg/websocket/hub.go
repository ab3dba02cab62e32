package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	gws "github.com/gorilla/websocket"

	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/realtime"
)

// Hub accepts WebSocket clients, tracks them in a registry and fans events
// out to them.
type Hub struct {
	registry    *realtime.Registry
	auth        *realtime.Authenticator
	upgrader    gws.Upgrader
	checkOrigin func(r *http.Request) bool
	cfg         Config
	logger      *slog.Logger

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
		stop:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("websocket"))
	h.registry = realtime.NewRegistry(realtime.WithRegistryLogger(h.logger))
	if h.checkOrigin == nil {
		h.checkOrigin = originChecker(h.cfg.AllowedOrigins)
	}
	h.upgrader = gws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// Start launches the liveness sweep. Calling it more than once is a no-op.
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
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.sweep()
		}
	}
}

// sweep closes connections that did not answer the previous ping and pings
// the rest.
func (h *Hub) sweep() {
	h.registry.Each(func(rc realtime.Conn) {
		c, ok := rc.(*conn)
		if !ok {
			return
		}
		if !c.alive.Swap(false) {
			h.logger.Info("closing unresponsive connection", logger.ConnectionID(c.id), logger.UserID(c.key.UserID))
			h.registry.Unregister(c)
			c.closeWith(gws.CloseGoingAway, "ping timeout")
			return
		}
		if err := c.ping(); err != nil {
			h.logger.Debug("ping failed", logger.ConnectionID(c.id), logger.Error(err))
			h.registry.Unregister(c)
			c.closeWith(gws.CloseGoingAway, "ping failed")
		}
	})
}

// SendToUser delivers the event to every connection of the user.
func (h *Hub) SendToUser(ctx context.Context, tenantID, userID string, e realtime.Event) bool {
	return h.registry.SendToUser(ctx, tenantID, userID, e)
}

// SendToTenant delivers the event to every connection of the tenant.
func (h *Hub) SendToTenant(ctx context.Context, tenantID string, e realtime.Event) int {
	return h.registry.SendToTenant(ctx, tenantID, e)
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	return h.registry.Count()
}

// CountForTenant returns the number of open connections of the tenant.
func (h *Hub) CountForTenant(tenantID string) int {
	return h.registry.CountForTenant(tenantID)
}

// CountForUser returns the number of open connections of the user.
func (h *Hub) CountForUser(tenantID, userID string) int {
	return h.registry.CountForUser(tenantID, userID)
}

// ServeHTTP upgrades the request. Authentication failures are reported with
// an application close code after the upgrade so browser clients can read it.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, authErr := h.auth.Authenticate(r)

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.DebugContext(r.Context(), "upgrade failed", logger.Error(err))
		return
	}

	if authErr != nil {
		code, reason := closeFor(authErr)
		h.logger.InfoContext(r.Context(), "rejected connection",
			slog.Int("close_code", code), logger.Error(authErr))
		h.reject(ws, code, reason)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		h.reject(ws, gws.CloseGoingAway, "server shutdown")
		return
	}
	c := newConn(ws, key, h.cfg)
	_ = c.Send(realtime.Event{
		Type: realtime.EventConnected,
		Data: realtime.ConnectedPayload{ConnectionID: c.id},
	})
	h.registry.Register(c)
	h.wg.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.wg.Done()
		c.writePump()
	}()

	log := h.logger.With(
		logger.ConnectionID(c.id),
		logger.TenantID(key.TenantID),
		logger.UserID(key.UserID),
	)
	log.InfoContext(r.Context(), "connection opened")

	h.readLoop(c, log)

	h.registry.Unregister(c)
	_ = c.Close()
	<-c.pumpDone
	log.Info("connection closed")
}

func (h *Hub) reject(ws *gws.Conn, code int, reason string) {
	_ = ws.WriteControl(gws.CloseMessage, gws.FormatCloseMessage(code, reason),
		time.Now().Add(h.cfg.WriteTimeout))
	_ = ws.Close()
}

type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (h *Hub) readLoop(c *conn, log *slog.Logger) {
	c.ws.SetReadLimit(h.cfg.ReadLimit)
	c.ws.SetPongHandler(func(string) error {
		c.alive.Store(true)
		return nil
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if gws.IsUnexpectedCloseError(err, gws.CloseGoingAway, gws.CloseNormalClosure, gws.CloseNoStatusReceived) {
				log.Debug("unexpected close", logger.Error(err))
			}
			return
		}
		c.alive.Store(true)

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug("ignoring malformed frame", logger.Error(err))
			continue
		}
		switch msg.Type {
		case "ping":
			_ = c.Send(realtime.Event{Type: realtime.EventPong})
		case "subscribe":
			_ = c.Send(realtime.Event{Type: realtime.EventSubscribed})
		default:
			log.Debug("ignoring unknown frame", slog.String("type", msg.Type))
		}
	}
}

// Shutdown stops the sweep, tells every client the server is going away and
// closes them. It waits for write pumps to finish or ctx to expire. Safe to
// call more than once.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		close(h.stop)
	}
	h.mu.Unlock()

	conns := h.registry.Drain()
	for _, rc := range conns {
		_ = rc.Send(realtime.Event{Type: realtime.EventShutdown})
		if c, ok := rc.(*conn); ok {
			c.closeWith(gws.CloseGoingAway, "server shutdown")
		} else {
			_ = rc.Close()
		}
	}
	if len(conns) > 0 {
		h.logger.InfoContext(ctx, "closed connections on shutdown", slog.Int("count", len(conns)))
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
