package notifications_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/carenotify/pkg/notifications"
)

func TestMemoryStore_CreateNotification(t *testing.T) {
	ctx := context.Background()
	store := notifications.NewMemoryStore()
	store.AddUser("t1", "u1", "", "")

	n, err := store.CreateNotification(ctx, "t1", notifications.CreateParams{
		UserID: "u1", Type: "lab_result", Title: "Results", Message: "Ready",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "t1", n.TenantID)
	assert.Equal(t, notifications.PriorityMedium, n.Priority)
	assert.False(t, n.CreatedAt.IsZero())
	assert.Len(t, store.Notifications("t1"), 1)

	_, err = store.CreateNotification(ctx, "", notifications.CreateParams{UserID: "u1", Type: "x"})
	assert.ErrorIs(t, err, notifications.ErrMissingTenant)

	_, err = store.CreateNotification(ctx, "t1", notifications.CreateParams{Type: "x"})
	assert.ErrorIs(t, err, notifications.ErrMissingUser)
}

func TestMemoryStore_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	store := notifications.NewMemoryStore()
	store.AddUser("hospital-a", "nurse-a", "nurse@a.test", "+15550101")
	store.AddUser("hospital-b", "doctor-b", "doctor@b.test", "+15550202")

	_, err := store.CreateNotification(ctx, "hospital-a", notifications.CreateParams{UserID: "doctor-b", Type: "lab_result"})
	assert.ErrorIs(t, err, notifications.ErrRecipientNotFound)
	assert.Empty(t, store.Notifications("hospital-a"))

	_, err = store.GetEmail(ctx, "hospital-a", "doctor-b")
	assert.ErrorIs(t, err, notifications.ErrRecipientNotFound)
	_, err = store.GetPhone(ctx, "hospital-a", "doctor-b")
	assert.ErrorIs(t, err, notifications.ErrRecipientNotFound)

	addr, err := store.GetEmail(ctx, "hospital-b", "doctor-b")
	require.NoError(t, err)
	assert.Equal(t, "doctor@b.test", addr)
}

func TestMemoryStore_Stats(t *testing.T) {
	ctx := context.Background()
	store := notifications.NewMemoryStore()
	store.AddUser("t1", "u1", "", "")
	store.AddUser("t1", "u2", "", "")
	for range 3 {
		_, err := store.CreateNotification(ctx, "t1", notifications.CreateParams{UserID: "u1", Type: "x"})
		require.NoError(t, err)
	}
	_, err := store.CreateNotification(ctx, "t1", notifications.CreateParams{UserID: "u2", Type: "x"})
	require.NoError(t, err)

	st, err := store.Stats(ctx, "t1", "u1")
	require.NoError(t, err)
	assert.Equal(t, notifications.Stats{Total: 3, Unread: 3}, st)
}

func TestMemoryStore_Recipients(t *testing.T) {
	ctx := context.Background()
	store := notifications.NewMemoryStore()
	store.AddUser("t1", "u1", "u1@clinic.test", "")
	store.AddUser("t1", "u1", "u1@clinic.test", "")
	store.AddUser("t1", "u2", "", "+15550100")

	users, err := store.ListActiveUsers(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, users)

	email, err := store.GetEmail(ctx, "t1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1@clinic.test", email)

	phone, err := store.GetPhone(ctx, "t1", "u1")
	require.NoError(t, err)
	assert.Empty(t, phone)

	phone, err = store.GetPhone(ctx, "t1", "u2")
	require.NoError(t, err)
	assert.Equal(t, "+15550100", phone)
}

func TestMemoryStore_Attempts(t *testing.T) {
	store := notifications.NewMemoryStore()
	require.NoError(t, store.LogAttempt(context.Background(), notifications.Attempt{
		TenantID: "t1", NotificationID: "n1", Channel: notifications.ChannelEmail, Status: notifications.AttemptDelivered,
	}))
	attempts := store.Attempts()
	require.Len(t, attempts, 1)
	assert.False(t, attempts[0].CreatedAt.IsZero())
}

type brokenLog struct{}

func (brokenLog) LogAttempt(context.Context, notifications.Attempt) error {
	return errors.New("archive unavailable")
}

func TestMultiLog(t *testing.T) {
	first := notifications.NewMemoryStore()
	second := notifications.NewMemoryStore()
	attempt := notifications.Attempt{TenantID: "t1", NotificationID: "n1", Channel: notifications.ChannelSMS, Status: notifications.AttemptFailed}

	require.NoError(t, notifications.MultiLog{first, nil, second}.LogAttempt(context.Background(), attempt))
	assert.Len(t, first.Attempts(), 1)
	assert.Len(t, second.Attempts(), 1)

	err := notifications.MultiLog{brokenLog{}, first}.LogAttempt(context.Background(), attempt)
	assert.Error(t, err)
	assert.Len(t, first.Attempts(), 2, "a failing log does not stop the others")
}
