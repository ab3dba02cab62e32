package delivery

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/carenotify/pkg/broadcast"
	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/notifications"
)

// InApp pushes a notification to the user's live connections.
type InApp interface {
	BroadcastToUser(ctx context.Context, tenantID, userID string, n notifications.Notification) broadcast.UserResult
}

// ChannelSender delivers over one out-of-band channel.
type ChannelSender interface {
	SendWithRetry(ctx context.Context, tenantID string, n notifications.Notification, maxAttempts int) notifications.DeliveryResult
}

// Orchestrator routes a notification to every channel the user has enabled.
type Orchestrator struct {
	store       notifications.Store
	settings    notifications.SettingsStore
	inApp       InApp
	email       ChannelSender
	sms         ChannelSender
	push        ChannelSender
	tracker     *Tracker
	maxAttempts int
	concurrency int
	logger      *slog.Logger
}

// NewOrchestrator creates an orchestrator. store is only needed by the batch
// calls; settings may be nil, in which case defaults apply to every user.
func NewOrchestrator(store notifications.Store, settings notifications.SettingsStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:       store,
		settings:    settings,
		push:        PushSender{},
		maxAttempts: DefaultMaxAttempts,
		concurrency: 1,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(logger.Component("delivery"))
	return o
}

// Deliver sends n to each enabled channel in the order in_app, email, sms,
// push. A failing channel never stops the others.
func (o *Orchestrator) Deliver(ctx context.Context, tenantID string, n notifications.Notification) (notifications.DeliveryReport, error) {
	if tenantID == "" {
		return notifications.DeliveryReport{}, notifications.ErrMissingTenant
	}
	if n.UserID == "" {
		return notifications.DeliveryReport{}, notifications.ErrMissingUser
	}

	settings, err := notifications.ResolveSettings(ctx, o.settings, tenantID, n.UserID, n.Type)
	if err != nil {
		o.logger.WarnContext(ctx, "settings lookup failed, using defaults",
			logger.TenantID(tenantID),
			logger.UserID(n.UserID),
			logger.Error(err),
		)
	}

	results := make([]notifications.DeliveryResult, 0, len(notifications.Channels))
	for _, ch := range notifications.Channels {
		if !settings.Enabled(ch) {
			continue
		}
		results = append(results, o.deliverChannel(ctx, tenantID, n, ch))
	}

	report := notifications.NewDeliveryReport(n, results)
	o.logger.InfoContext(ctx, "notification delivered",
		logger.TenantID(tenantID),
		logger.UserID(n.UserID),
		logger.NotificationID(n.ID),
		slog.Int("successful", report.Summary.Successful),
		slog.Int("failed", report.Summary.Failed),
	)
	return report, nil
}

func (o *Orchestrator) deliverChannel(ctx context.Context, tenantID string, n notifications.Notification, ch notifications.Channel) notifications.DeliveryResult {
	var sender ChannelSender
	switch ch {
	case notifications.ChannelInApp:
		return o.deliverInApp(ctx, tenantID, n)
	case notifications.ChannelEmail:
		sender = o.email
	case notifications.ChannelSMS:
		sender = o.sms
	case notifications.ChannelPush:
		sender = o.push
	}
	if sender == nil {
		return notifications.Failed(ch, fmt.Sprintf("%s service not configured", ch))
	}
	return sender.SendWithRetry(ctx, tenantID, n, o.maxAttempts)
}

func (o *Orchestrator) deliverInApp(ctx context.Context, tenantID string, n notifications.Notification) notifications.DeliveryResult {
	attempt := notifications.Attempt{
		TenantID:       tenantID,
		NotificationID: n.ID,
		Channel:        notifications.ChannelInApp,
		Status:         notifications.AttemptSent,
	}
	if o.inApp == nil || !o.inApp.BroadcastToUser(ctx, tenantID, n.UserID, n).Delivered() {
		attempt.Status = notifications.AttemptFailed
		attempt.Error = ReasonNoConnections
		o.tracker.Record(ctx, attempt)
		return notifications.Failed(notifications.ChannelInApp, ReasonNoConnections)
	}
	o.tracker.Record(ctx, attempt)
	return notifications.Succeeded(notifications.ChannelInApp, "")
}

// DeliverToUsers creates one notification per user from params and delivers
// each. Users whose notification cannot be created are logged and skipped.
// params.UserID is ignored.
func (o *Orchestrator) DeliverToUsers(ctx context.Context, tenantID string, userIDs []string, params notifications.CreateParams) ([]notifications.DeliveryReport, error) {
	if tenantID == "" {
		return nil, notifications.ErrMissingTenant
	}
	if o.store == nil {
		return nil, ErrNoStore
	}

	slots := make([]*notifications.DeliveryReport, len(userIDs))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, userID := range userIDs {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			p := params
			p.UserID = userID
			n, err := o.store.CreateNotification(ctx, tenantID, p)
			if err != nil {
				o.logger.ErrorContext(ctx, "failed to create notification, skipping user",
					logger.TenantID(tenantID),
					logger.UserID(userID),
					logger.Error(err),
				)
				return nil
			}
			report, err := o.Deliver(ctx, tenantID, n)
			if err != nil {
				o.logger.ErrorContext(ctx, "failed to deliver notification",
					logger.TenantID(tenantID),
					logger.NotificationID(n.ID),
					logger.Error(err),
				)
				return nil
			}
			slots[i] = &report
			return nil
		})
	}
	_ = g.Wait()

	reports := make([]notifications.DeliveryReport, 0, len(userIDs))
	for _, r := range slots {
		if r != nil {
			reports = append(reports, *r)
		}
	}
	return reports, ctx.Err()
}

// DeliverToTenant delivers params to every active user of the tenant.
func (o *Orchestrator) DeliverToTenant(ctx context.Context, tenantID string, params notifications.CreateParams) ([]notifications.DeliveryReport, error) {
	if tenantID == "" {
		return nil, notifications.ErrMissingTenant
	}
	if o.store == nil {
		return nil, ErrNoStore
	}
	users, err := o.store.ListActiveUsers(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}
	return o.DeliverToUsers(ctx, tenantID, users, params)
}
