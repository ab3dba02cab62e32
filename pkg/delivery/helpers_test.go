package delivery_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrymomot/carenotify/pkg/delivery"
	"github.com/dmitrymomot/carenotify/pkg/email"
	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/notifications"
)

const (
	tenantID = "hospital-1"
	userID   = "nurse-1"
)

type fakeMailer struct {
	mu    sync.Mutex
	errs  []error
	sent  []email.SendEmailParams
	calls int
}

func (f *fakeMailer) SendEmail(_ context.Context, p email.SendEmailParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	f.sent = append(f.sent, p)
	return fmt.Sprintf("email-%d", f.calls), nil
}

func (f *fakeMailer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type sentSMS struct {
	to      string
	message string
}

type fakeSMS struct {
	mu    sync.Mutex
	errs  []error
	sent  []sentSMS
	calls int
}

func (f *fakeSMS) SendSMS(_ context.Context, to, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	f.sent = append(f.sent, sentSMS{to: to, message: message})
	return fmt.Sprintf("sms-%d", f.calls), nil
}

func (f *fakeSMS) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// recordDelays captures the backoff delays and skips the actual waiting.
func recordDelays(delays *[]time.Duration) delivery.SenderOption {
	return delivery.WithBackoffDecorator(func(next retry.Backoff) retry.Backoff {
		return retry.BackoffFunc(func() (time.Duration, bool) {
			d, stop := next.Next()
			if !stop {
				*delays = append(*delays, d)
			}
			return 0, stop
		})
	})
}

func fixedClock(hhmm string) func() time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	ts := time.Date(2026, 3, 14, t.Hour(), t.Minute(), 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func ptr(s string) *string { return &s }

func stores(s *notifications.MemoryStore) delivery.Stores {
	return delivery.Stores{Settings: s, Recipients: s, Templates: s}
}

func newNotification(priority notifications.Priority) notifications.Notification {
	return notifications.Notification{
		ID:       "notif-1",
		TenantID: tenantID,
		UserID:   userID,
		Type:     "lab_result",
		Priority: priority,
		Title:    "Lab result ready",
		Message:  "Potassium panel for bed 12 is available",
		Data:     map[string]any{"patient": "Amina K.", "bed": 12},
	}
}

func attemptsFor(s *notifications.MemoryStore, ch notifications.Channel) []notifications.Attempt {
	var out []notifications.Attempt
	for _, a := range s.Attempts() {
		if a.Channel == ch {
			out = append(out, a)
		}
	}
	return out
}

func newTracker(s *notifications.MemoryStore) *delivery.Tracker {
	return delivery.NewTracker(s, logger.Discard())
}
