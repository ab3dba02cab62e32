package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/notifications"
)

// Stores groups the lookups a channel sender needs.
type Stores struct {
	Settings   notifications.SettingsStore
	Recipients notifications.RecipientStore
	Templates  notifications.TemplateStore
}

// pipeline holds the state shared by the email and SMS senders.
type pipeline struct {
	channel        notifications.Channel
	stores         Stores
	tracker        *Tracker
	logger         *slog.Logger
	now            func() time.Time
	backoffBase    time.Duration
	decorate       func(retry.Backoff) retry.Backoff
	maxAttempts    int
	footer         string
	serviceEnabled bool
}

func newPipeline(ch notifications.Channel, stores Stores, opts []SenderOption) pipeline {
	p := pipeline{
		channel:        ch,
		stores:         stores,
		logger:         slog.Default(),
		now:            time.Now,
		backoffBase:    DefaultBackoffBase,
		maxAttempts:    DefaultMaxAttempts,
		serviceEnabled: true,
	}
	for _, opt := range opts {
		opt(&p)
	}
	p.logger = p.logger.With(logger.Component("delivery."+string(ch)), logger.Channel(string(ch)))
	return p
}

// preferences resolves the user's settings; lookup errors fall back to defaults.
func (p *pipeline) preferences(ctx context.Context, tenantID string, n notifications.Notification) notifications.Settings {
	s, err := notifications.ResolveSettings(ctx, p.stores.Settings, tenantID, n.UserID, n.Type)
	if err != nil {
		p.logger.WarnContext(ctx, "settings lookup failed, using defaults",
			logger.TenantID(tenantID),
			logger.UserID(n.UserID),
			logger.Error(err),
		)
	}
	return s
}

func (p *pipeline) checkEnabled(s notifications.Settings) error {
	if s.Enabled(p.channel) {
		return nil
	}
	return fail(ErrChannelDisabled, fmt.Sprintf("%s notifications disabled", p.channel), nil)
}

func (p *pipeline) checkQuietHours(ctx context.Context, tenantID string, n notifications.Notification, s notifications.Settings) error {
	if n.Priority.IsCritical() || !s.InQuietHours(p.now()) {
		return nil
	}
	p.record(ctx, tenantID, n, notifications.AttemptPending, ReasonQuietHours)
	return fail(ErrQuietHours, ReasonQuietHours, nil)
}

// reject records a failed attempt and returns a terminal error.
func (p *pipeline) reject(ctx context.Context, tenantID string, n notifications.Notification, kind error, reason string) error {
	p.record(ctx, tenantID, n, notifications.AttemptFailed, reason)
	return fail(kind, reason, nil)
}

// transportFailed records a failed send and returns a retryable error.
func (p *pipeline) transportFailed(ctx context.Context, tenantID string, n notifications.Notification, err error) error {
	p.record(ctx, tenantID, n, notifications.AttemptFailed, err.Error())
	return fail(ErrTransport, err.Error(), err)
}

func (p *pipeline) record(ctx context.Context, tenantID string, n notifications.Notification, status notifications.AttemptStatus, reason string) {
	p.tracker.Record(ctx, notifications.Attempt{
		TenantID:       tenantID,
		NotificationID: n.ID,
		Channel:        p.channel,
		Status:         status,
		Error:          reason,
	})
}

// template returns the configured template for the type or an empty one.
func (p *pipeline) template(ctx context.Context, n notifications.Notification) notifications.Template {
	if p.stores.Templates == nil {
		return notifications.Template{}
	}
	t, err := p.stores.Templates.GetTemplate(ctx, n.Type)
	if err != nil || t == nil {
		if err != nil && !errors.Is(err, notifications.ErrTemplateNotFound) {
			p.logger.WarnContext(ctx, "template lookup failed, using notification text",
				slog.String("type", n.Type),
				logger.Error(err),
			)
		}
		return notifications.Template{}
	}
	return *t
}

func (p *pipeline) result(messageID string, err error) notifications.DeliveryResult {
	if err != nil {
		return notifications.Failed(p.channel, err.Error())
	}
	return notifications.Succeeded(p.channel, messageID)
}

// withRetry runs once up to maxAttempts times. Terminal errors stop the loop;
// transient ones wait base, 2*base, 4*base, ... between attempts.
func (p *pipeline) withRetry(ctx context.Context, tenantID string, n notifications.Notification, maxAttempts int, once func(context.Context) (string, error)) (string, error) {
	if maxAttempts < 1 {
		maxAttempts = p.maxAttempts
	}

	var (
		attempts int
		lastErr  error
	)

	exp := retry.WithMaxRetries(uint64(maxAttempts-1), retry.NewExponential(p.backoffBase))
	var b retry.Backoff = retry.BackoffFunc(func() (time.Duration, bool) {
		d, stop := exp.Next()
		if !stop {
			p.logger.InfoContext(ctx, "retrying delivery",
				logger.TenantID(tenantID),
				logger.NotificationID(n.ID),
				logger.Attempt(attempts+1),
				logger.Duration(d),
			)
		}
		return d, stop
	})
	if p.decorate != nil {
		b = p.decorate(b)
	}

	messageID, err := retry.DoValue(ctx, b, func(ctx context.Context) (string, error) {
		attempts++
		id, err := once(ctx)
		if err == nil {
			return id, nil
		}
		lastErr = err
		if IsTerminal(err) {
			return "", err
		}
		p.logger.WarnContext(ctx, "delivery attempt failed",
			logger.TenantID(tenantID),
			logger.NotificationID(n.ID),
			logger.Attempt(attempts),
			logger.Error(err),
		)
		return "", retry.RetryableError(err)
	})

	switch {
	case err == nil:
		return messageID, nil
	case IsTerminal(err):
		return "", err
	case lastErr == nil:
		return "", fail(ErrTransport, err.Error(), err)
	case errors.Is(err, lastErr):
		return "", exhausted(attempts, lastErr)
	default:
		// The context ended while waiting for the next attempt.
		return "", exhausted(attempts, err)
	}
}
