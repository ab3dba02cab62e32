package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/carenotify/pkg/logger"
)

// Key identifies the owner of a connection.
type Key struct {
	TenantID string
	UserID   string
}

// Conn is a live client connection held by a Registry.
type Conn interface {
	ID() string
	Key() Key
	// Send queues the event for delivery. It must not block on network I/O.
	Send(Event) error
	Close() error
}

// Registry tracks live connections per (tenant, user). A user may hold any
// number of connections; each is keyed by its id.
type Registry struct {
	mu     sync.RWMutex
	conns  map[Key]map[string]Conn
	logger *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used to report failed writes.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		conns:  make(map[Key]map[string]Conn),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds the connection under its key. Registering the same id twice
// replaces the handle without changing counts.
func (r *Registry) Register(c Conn) {
	key := c.Key()
	r.mu.Lock()
	set, ok := r.conns[key]
	if !ok {
		set = make(map[string]Conn)
		r.conns[key] = set
	}
	set[c.ID()] = c
	r.mu.Unlock()
}

// Unregister removes the connection and drops the user's set once it is
// empty. Unknown connections are ignored.
func (r *Registry) Unregister(c Conn) {
	key := c.Key()
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.conns[key]
	if !ok {
		return
	}
	delete(set, c.ID())
	if len(set) == 0 {
		delete(r.conns, key)
	}
}

// SendToUser writes the event to every connection of the user and reports
// whether at least one write succeeded. Failed writes are logged.
func (r *Registry) SendToUser(ctx context.Context, tenantID, userID string, e Event) bool {
	return r.fanOut(ctx, r.userConns(Key{TenantID: tenantID, UserID: userID}), e) > 0
}

// SendToTenant writes the event to every connection of the tenant and returns
// the number of successful writes.
func (r *Registry) SendToTenant(ctx context.Context, tenantID string, e Event) int {
	targets := r.snapshot(func(k Key) bool { return k.TenantID == tenantID })
	return r.fanOut(ctx, targets, e)
}

func (r *Registry) fanOut(ctx context.Context, targets []Conn, e Event) int {
	sent := 0
	for _, c := range targets {
		if err := c.Send(e); err != nil {
			key := c.Key()
			r.logger.WarnContext(ctx, "failed to write event",
				logger.ConnectionID(c.ID()),
				logger.TenantID(key.TenantID),
				logger.UserID(key.UserID),
				logger.Event(e.Type),
				logger.Error(err),
			)
			continue
		}
		sent++
	}
	return sent
}

// snapshot copies matching handles under the read lock so writes happen
// without holding it.
func (r *Registry) snapshot(match func(Key) bool) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Conn
	for key, set := range r.conns {
		if match != nil && !match(key) {
			continue
		}
		for _, c := range set {
			out = append(out, c)
		}
	}
	return out
}

func (r *Registry) userConns(key Key) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.conns[key]
	out := make([]Conn, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	return len(r.snapshot(nil))
}

// CountForTenant returns the number of live connections of the tenant.
func (r *Registry) CountForTenant(tenantID string) int {
	return len(r.snapshot(func(k Key) bool { return k.TenantID == tenantID }))
}

// CountForUser returns the number of live connections of the user.
func (r *Registry) CountForUser(tenantID, userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns[Key{TenantID: tenantID, UserID: userID}])
}

// Each calls fn for a snapshot of every connection. fn may call Unregister.
func (r *Registry) Each(fn func(Conn)) {
	for _, c := range r.snapshot(nil) {
		fn(c)
	}
}

// Drain empties the registry and returns the connections it held.
func (r *Registry) Drain() []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Conn
	for _, set := range r.conns {
		for _, c := range set {
			out = append(out, c)
		}
	}
	r.conns = make(map[Key]map[string]Conn)
	return out
}
