package delivery_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/carenotify/pkg/delivery"
	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/notifications"
)

func TestEmailSender_Send(t *testing.T) {
	t.Parallel()

	store := notifications.NewMemoryStore()
	store.AddUser(tenantID, userID, "nurse@example.com", "")
	store.PutTemplate(notifications.Template{
		Type:            "lab_result",
		SubjectTemplate: "Result for {{patient}}",
		BodyTemplate:    "<p>Bed {{bed}}: {{patient}}</p>",
	})
	tracker := newTracker(store)
	mailer := &fakeMailer{}

	sender := delivery.NewEmailSender(mailer, stores(store),
		delivery.WithAttemptTracker(tracker),
		delivery.WithSenderLogger(logger.Discard()),
		delivery.WithFooter("St. Mary's Hospital"),
	)

	n := newNotification(notifications.PriorityHigh)
	n.Data["patient"] = "<Amina>"
	res := sender.Send(context.Background(), tenantID, n)
	tracker.Wait()

	assert.True(t, res.Success)
	assert.Equal(t, notifications.ChannelEmail, res.Channel)
	assert.Equal(t, "email-1", res.MessageID)
	assert.Empty(t, res.Error)

	require.Len(t, mailer.sent, 1)
	sent := mailer.sent[0]
	assert.Equal(t, "nurse@example.com", sent.SendTo)
	assert.Equal(t, "Result for <Amina>", sent.Subject)
	assert.Equal(t, "lab_result", sent.Tag)
	assert.Contains(t, sent.BodyHTML, "<p>Bed 12: &lt;Amina&gt;</p>")
	assert.Contains(t, sent.BodyHTML, "St. Mary&#39;s Hospital")

	attempts := store.Attempts()
	require.Len(t, attempts, 1)
	assert.Equal(t, notifications.AttemptDelivered, attempts[0].Status)
	assert.Equal(t, "notif-1", attempts[0].NotificationID)
	assert.Equal(t, tenantID, attempts[0].TenantID)
}

func TestEmailSender_FallsBackToNotificationText(t *testing.T) {
	t.Parallel()

	store := notifications.NewMemoryStore()
	store.AddUser(tenantID, userID, "nurse@example.com", "")
	mailer := &fakeMailer{}

	sender := delivery.NewEmailSender(mailer, stores(store), delivery.WithSenderLogger(logger.Discard()))
	res := sender.Send(context.Background(), tenantID, newNotification(notifications.PriorityMedium))

	require.True(t, res.Success)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Lab result ready", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].BodyHTML, "Potassium panel for bed 12 is available")
}

func TestEmailSender_Policy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		email      string
		settings   *notifications.Settings
		clock      string
		priority   notifications.Priority
		wantErr    string
		wantStatus notifications.AttemptStatus
		wantSent   bool
	}{
		{
			name:     "disabled by preference",
			email:    "nurse@example.com",
			settings: &notifications.Settings{InAppEnabled: true},
			clock:    "10:00",
			priority: notifications.PriorityHigh,
			wantErr:  "email notifications disabled",
		},
		{
			name:       "no address on file",
			clock:      "10:00",
			priority:   notifications.PriorityHigh,
			wantErr:    "No email address",
			wantStatus: notifications.AttemptFailed,
		},
		{
			name:  "inside quiet hours",
			email: "nurse@example.com",
			settings: &notifications.Settings{
				EmailEnabled:    true,
				QuietHoursStart: ptr("22:00"),
				QuietHoursEnd:   ptr("23:00"),
			},
			clock:      "22:30",
			priority:   notifications.PriorityMedium,
			wantErr:    "Within quiet hours",
			wantStatus: notifications.AttemptPending,
		},
		{
			name:  "critical bypasses quiet hours",
			email: "nurse@example.com",
			settings: &notifications.Settings{
				EmailEnabled:    true,
				QuietHoursStart: ptr("22:00"),
				QuietHoursEnd:   ptr("23:00"),
			},
			clock:      "22:30",
			priority:   notifications.PriorityCritical,
			wantStatus: notifications.AttemptDelivered,
			wantSent:   true,
		},
		{
			name:  "outside quiet hours",
			email: "nurse@example.com",
			settings: &notifications.Settings{
				EmailEnabled:    true,
				QuietHoursStart: ptr("22:00"),
				QuietHoursEnd:   ptr("23:00"),
			},
			clock:      "23:01",
			priority:   notifications.PriorityLow,
			wantStatus: notifications.AttemptDelivered,
			wantSent:   true,
		},
		{
			name:  "overnight window is never in effect",
			email: "nurse@example.com",
			settings: &notifications.Settings{
				EmailEnabled:    true,
				QuietHoursStart: ptr("22:00"),
				QuietHoursEnd:   ptr("06:00"),
			},
			clock:      "23:30",
			priority:   notifications.PriorityMedium,
			wantStatus: notifications.AttemptDelivered,
			wantSent:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := notifications.NewMemoryStore()
			store.AddUser(tenantID, userID, tt.email, "")
			if tt.settings != nil {
				st := *tt.settings
				st.TenantID, st.UserID, st.NotificationType = tenantID, userID, "lab_result"
				store.PutSettings(st)
			}
			tracker := newTracker(store)
			mailer := &fakeMailer{}
			var delays []time.Duration

			sender := delivery.NewEmailSender(mailer, stores(store),
				delivery.WithAttemptTracker(tracker),
				delivery.WithClock(fixedClock(tt.clock)),
				delivery.WithSenderLogger(logger.Discard()),
				recordDelays(&delays),
			)

			res := sender.SendWithRetry(context.Background(), tenantID, newNotification(tt.priority), 3)
			tracker.Wait()

			assert.Equal(t, tt.wantSent, res.Success)
			assert.Equal(t, tt.wantErr, res.Error)
			assert.Empty(t, delays, "policy outcomes are never retried")
			if tt.wantSent {
				assert.Equal(t, 1, mailer.Calls())
			} else {
				assert.Zero(t, mailer.Calls())
			}

			attempts := store.Attempts()
			if tt.wantStatus == "" {
				assert.Empty(t, attempts)
				return
			}
			require.Len(t, attempts, 1)
			assert.Equal(t, tt.wantStatus, attempts[0].Status)
			assert.Equal(t, tt.wantErr, attempts[0].Error)
		})
	}
}

type failingRecipients struct{}

func (failingRecipients) GetEmail(context.Context, string, string) (string, error) {
	return "", errors.New("directory unavailable")
}

func (failingRecipients) GetPhone(context.Context, string, string) (string, error) {
	return "", errors.New("directory unavailable")
}

func TestEmailSender_RecipientLookupErrorIsMissingAddress(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{}
	sender := delivery.NewEmailSender(mailer,
		delivery.Stores{Recipients: failingRecipients{}},
		delivery.WithSenderLogger(logger.Discard()),
	)

	res := sender.SendWithRetry(context.Background(), tenantID, newNotification(notifications.PriorityHigh), 3)
	assert.False(t, res.Success)
	assert.Equal(t, "No email address", res.Error)
	assert.Zero(t, mailer.Calls())
}

func TestEmailSender_SendWithRetry(t *testing.T) {
	t.Parallel()

	timeout := errors.New("connection timeout")

	tests := []struct {
		name        string
		errs        []error
		maxAttempts int
		wantSuccess bool
		wantError   string
		wantMessage string
		wantCalls   int
		wantDelays  []time.Duration
	}{
		{
			name:        "first attempt succeeds",
			maxAttempts: 3,
			wantSuccess: true,
			wantMessage: "email-1",
			wantCalls:   1,
		},
		{
			name:        "succeeds on third attempt",
			errs:        []error{timeout, timeout},
			maxAttempts: 3,
			wantSuccess: true,
			wantMessage: "email-3",
			wantCalls:   3,
			wantDelays:  []time.Duration{2 * time.Second, 4 * time.Second},
		},
		{
			name:        "exhausts attempts",
			errs:        []error{timeout, timeout, timeout},
			maxAttempts: 3,
			wantError:   "Failed after 3 attempts: connection timeout",
			wantCalls:   3,
			wantDelays:  []time.Duration{2 * time.Second, 4 * time.Second},
		},
		{
			name:        "single attempt budget",
			errs:        []error{timeout},
			maxAttempts: 1,
			wantError:   "Failed after 1 attempts: connection timeout",
			wantCalls:   1,
		},
		{
			name:        "default budget",
			errs:        []error{timeout, timeout, timeout},
			maxAttempts: 0,
			wantError:   "Failed after 3 attempts: connection timeout",
			wantCalls:   3,
			wantDelays:  []time.Duration{2 * time.Second, 4 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := notifications.NewMemoryStore()
			store.AddUser(tenantID, userID, "nurse@example.com", "")
			tracker := newTracker(store)
			mailer := &fakeMailer{errs: tt.errs}
			var delays []time.Duration

			sender := delivery.NewEmailSender(mailer, stores(store),
				delivery.WithAttemptTracker(tracker),
				delivery.WithSenderLogger(logger.Discard()),
				recordDelays(&delays),
			)

			res := sender.SendWithRetry(context.Background(), tenantID, newNotification(notifications.PriorityHigh), tt.maxAttempts)
			tracker.Wait()

			assert.Equal(t, tt.wantSuccess, res.Success)
			assert.Equal(t, tt.wantError, res.Error)
			assert.Equal(t, tt.wantMessage, res.MessageID)
			assert.Equal(t, tt.wantCalls, mailer.Calls())
			assert.Equal(t, tt.wantDelays, delays)
			assert.Len(t, store.Attempts(), tt.wantCalls)
		})
	}
}

func TestEmailSender_SendWithRetry_ContextCanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	store := notifications.NewMemoryStore()
	store.AddUser(tenantID, userID, "nurse@example.com", "")
	mailer := &fakeMailer{errs: []error{errors.New("smtp down"), nil}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender := delivery.NewEmailSender(mailer, stores(store),
		delivery.WithSenderLogger(logger.Discard()),
		delivery.WithBackoffDecorator(func(next retry.Backoff) retry.Backoff {
			return retry.BackoffFunc(func() (time.Duration, bool) {
				cancel()
				return time.Hour, false
			})
		}),
	)

	done := make(chan notifications.DeliveryResult, 1)
	go func() { done <- sender.SendWithRetry(ctx, tenantID, newNotification(notifications.PriorityHigh), 3) }()

	select {
	case res := <-done:
		assert.False(t, res.Success)
		assert.Equal(t, "Failed after 1 attempts: context canceled", res.Error)
		assert.Equal(t, 1, mailer.Calls())
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not stop on cancellation")
	}
}

func TestEmailSender_TransportErrorSingleAttempt(t *testing.T) {
	t.Parallel()

	store := notifications.NewMemoryStore()
	store.AddUser(tenantID, userID, "nurse@example.com", "")
	tracker := newTracker(store)
	mailer := &fakeMailer{errs: []error{errors.New("mailbox full")}}

	sender := delivery.NewEmailSender(mailer, stores(store),
		delivery.WithAttemptTracker(tracker),
		delivery.WithSenderLogger(logger.Discard()),
	)

	res := sender.Send(context.Background(), tenantID, newNotification(notifications.PriorityHigh))
	tracker.Wait()

	assert.False(t, res.Success)
	assert.Equal(t, "mailbox full", res.Error)
	attempts := store.Attempts()
	require.Len(t, attempts, 1)
	assert.Equal(t, notifications.AttemptFailed, attempts[0].Status)
	assert.Equal(t, "mailbox full", attempts[0].Error)
}
