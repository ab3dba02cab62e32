package broadcast

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/notifications"
	"github.com/dmitrymomot/carenotify/pkg/realtime"
)

// Hub is a realtime transport holding live connections.
type Hub interface {
	SendToUser(ctx context.Context, tenantID, userID string, e realtime.Event) bool
	SendToTenant(ctx context.Context, tenantID string, e realtime.Event) int
}

// Store persists notifications and computes badge counters.
type Store interface {
	CreateNotification(ctx context.Context, tenantID string, params notifications.CreateParams) (notifications.Notification, error)
	Stats(ctx context.Context, tenantID, userID string) (notifications.Stats, error)
}

// UserResult reports which transports reached the user.
type UserResult struct {
	Persistent bool `json:"websocket"`
	Streaming  bool `json:"sse"`
}

// Delivered reports whether any transport reached the user.
func (r UserResult) Delivered() bool { return r.Persistent || r.Streaming }

// TenantResult counts successful writes per transport.
type TenantResult struct {
	Persistent int `json:"websocket"`
	Streaming  int `json:"sse"`
}

// Total is the number of connections reached.
func (r TenantResult) Total() int { return r.Persistent + r.Streaming }

// Broadcaster pushes events through both realtime transports. Either hub may
// be absent.
type Broadcaster struct {
	persistent Hub
	streaming  Hub
	store      Store
	logger     *slog.Logger
}

// New creates a broadcaster.
func New(opts ...Option) *Broadcaster {
	b := &Broadcaster{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(logger.Component("broadcast"))
	return b
}

// BroadcastToUser sends the notification to every live connection of the
// user. Having no connection is not an error.
func (b *Broadcaster) BroadcastToUser(ctx context.Context, tenantID, userID string, n notifications.Notification) UserResult {
	res := b.toUser(ctx, tenantID, userID, realtime.Event{Type: realtime.EventNotification, Data: n})
	if !res.Delivered() {
		b.logger.DebugContext(ctx, "no active connection",
			logger.TenantID(tenantID),
			logger.UserID(userID),
			logger.NotificationID(n.ID),
		)
	}
	return res
}

// BroadcastToTenant sends the notification to every live connection of the
// tenant.
func (b *Broadcaster) BroadcastToTenant(ctx context.Context, tenantID string, n notifications.Notification) TenantResult {
	e := realtime.Event{Type: realtime.EventNotification, Data: n}
	var res TenantResult
	if b.persistent != nil {
		res.Persistent = b.persistent.SendToTenant(ctx, tenantID, e)
	}
	if b.streaming != nil {
		res.Streaming = b.streaming.SendToTenant(ctx, tenantID, e)
	}
	b.logger.DebugContext(ctx, "tenant broadcast",
		logger.TenantID(tenantID),
		logger.NotificationID(n.ID),
		slog.Int("websocket", res.Persistent),
		slog.Int("sse", res.Streaming),
	)
	return res
}

// SendStatsUpdate pushes badge counters to the user's connections.
func (b *Broadcaster) SendStatsUpdate(ctx context.Context, tenantID, userID string, stats notifications.Stats) UserResult {
	return b.toUser(ctx, tenantID, userID, realtime.Event{Type: realtime.EventStatsUpdate, Data: stats})
}

// CreateAndBroadcast persists a notification, pushes it to the user and then
// pushes refreshed counters. Only a persistence failure is returned.
func (b *Broadcaster) CreateAndBroadcast(ctx context.Context, tenantID string, params notifications.CreateParams) (notifications.Notification, error) {
	if b.store == nil {
		return notifications.Notification{}, ErrNoStore
	}
	n, err := b.store.CreateNotification(ctx, tenantID, params)
	if err != nil {
		return notifications.Notification{}, err
	}

	b.BroadcastToUser(ctx, tenantID, n.UserID, n)

	stats, err := b.store.Stats(ctx, tenantID, n.UserID)
	if err != nil {
		b.logger.WarnContext(ctx, "failed to compute stats",
			logger.TenantID(tenantID),
			logger.UserID(n.UserID),
			logger.Error(err),
		)
		return n, nil
	}
	b.SendStatsUpdate(ctx, tenantID, n.UserID, stats)
	return n, nil
}

func (b *Broadcaster) toUser(ctx context.Context, tenantID, userID string, e realtime.Event) UserResult {
	var res UserResult
	if b.persistent != nil {
		res.Persistent = b.persistent.SendToUser(ctx, tenantID, userID, e)
	}
	if b.streaming != nil {
		res.Streaming = b.streaming.SendToUser(ctx, tenantID, userID, e)
	}
	return res
}
