package delivery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/notifications"
)

// Tracker writes delivery attempts to a DeliveryLog in the background.
// Write failures are logged and never reach the sender.
type Tracker struct {
	log    notifications.DeliveryLog
	logger *slog.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

// NewTracker creates a tracker. A nil log turns Record into a no-op.
func NewTracker(log notifications.DeliveryLog, l *slog.Logger) *Tracker {
	if l == nil {
		l = slog.Default()
	}
	return &Tracker{
		log:    log,
		logger: l.With(logger.Component("delivery.tracker")),
		now:    time.Now,
	}
}

// Record schedules a write of a. Safe to call on a nil Tracker.
func (t *Tracker) Record(ctx context.Context, a notifications.Attempt) {
	if t == nil || t.log == nil {
		return
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = t.now()
	}
	ctx = context.WithoutCancel(ctx)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := t.log.LogAttempt(ctx, a); err != nil {
			t.logger.WarnContext(ctx, "failed to record delivery attempt",
				logger.TenantID(a.TenantID),
				logger.NotificationID(a.NotificationID),
				logger.Channel(string(a.Channel)),
				slog.String("status", string(a.Status)),
				logger.Error(err),
			)
		}
	}()
}

// Wait blocks until every scheduled write has finished.
func (t *Tracker) Wait() {
	if t == nil {
		return
	}
	t.wg.Wait()
}

// WaitContext is Wait bounded by ctx.
func (t *Tracker) WaitContext(ctx context.Context) error {
	if t == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
