package broadcast_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/carenotify/pkg/broadcast"
	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/notifications"
	"github.com/dmitrymomot/carenotify/pkg/realtime"
)

type recordingHub struct {
	mu     sync.Mutex
	online map[string]bool // userID -> has connection
	events []realtime.Event
}

func newHub(users ...string) *recordingHub {
	h := &recordingHub{online: map[string]bool{}}
	for _, u := range users {
		h.online[u] = true
	}
	return h
}

func (h *recordingHub) SendToUser(_ context.Context, _, userID string, e realtime.Event) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.online[userID] {
		return false
	}
	h.events = append(h.events, e)
	return true
}

func (h *recordingHub) SendToTenant(_ context.Context, _ string, e realtime.Event) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	return len(h.online)
}

func (h *recordingHub) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, e := range h.events {
		out = append(out, e.Type)
	}
	return out
}

type mockStore struct{ mock.Mock }

func (m *mockStore) CreateNotification(ctx context.Context, tenantID string, p notifications.CreateParams) (notifications.Notification, error) {
	args := m.Called(ctx, tenantID, p)
	return args.Get(0).(notifications.Notification), args.Error(1)
}

func (m *mockStore) Stats(ctx context.Context, tenantID, userID string) (notifications.Stats, error) {
	args := m.Called(ctx, tenantID, userID)
	return args.Get(0).(notifications.Stats), args.Error(1)
}

func TestBroadcastToUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	n := notifications.Notification{ID: "n1", TenantID: "t1", UserID: "u1"}

	tests := []struct {
		name string
		ws   *recordingHub
		sse  *recordingHub
		want broadcast.UserResult
	}{
		{"both transports", newHub("u1"), newHub("u1"), broadcast.UserResult{Persistent: true, Streaming: true}},
		{"websocket only", newHub("u1"), newHub(), broadcast.UserResult{Persistent: true}},
		{"sse only", newHub(), newHub("u1"), broadcast.UserResult{Streaming: true}},
		{"offline", newHub(), newHub(), broadcast.UserResult{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := broadcast.New(
				broadcast.WithPersistent(tt.ws),
				broadcast.WithStreaming(tt.sse),
				broadcast.WithLogger(logger.Discard()),
			)
			got := b.BroadcastToUser(ctx, "t1", "u1", n)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Persistent || tt.want.Streaming, got.Delivered())
		})
	}
}

func TestBroadcast_AbsentHubs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := broadcast.New(broadcast.WithLogger(logger.Discard()))
	assert.False(t, b.BroadcastToUser(ctx, "t1", "u1", notifications.Notification{}).Delivered())
	assert.Equal(t, 0, b.BroadcastToTenant(ctx, "t1", notifications.Notification{}).Total())

	ws := newHub("u1")
	b = broadcast.New(broadcast.WithPersistent(ws), broadcast.WithLogger(logger.Discard()))
	assert.True(t, b.SendStatsUpdate(ctx, "t1", "u1", notifications.Stats{Unread: 1}).Persistent)
	assert.Equal(t, []string{realtime.EventStatsUpdate}, ws.types())
}

func TestBroadcastToTenant(t *testing.T) {
	t.Parallel()
	ws := newHub("u1", "u2")
	sse := newHub("u3")
	b := broadcast.New(broadcast.WithPersistent(ws), broadcast.WithStreaming(sse), broadcast.WithLogger(logger.Discard()))

	res := b.BroadcastToTenant(context.Background(), "t1", notifications.Notification{ID: "n1"})
	assert.Equal(t, broadcast.TenantResult{Persistent: 2, Streaming: 1}, res)
	assert.Equal(t, 3, res.Total())
}

func TestCreateAndBroadcast(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	params := notifications.CreateParams{UserID: "u1", Type: "lab_result", Title: "Ready"}
	created := notifications.Notification{ID: "n1", TenantID: "t1", UserID: "u1", Type: "lab_result"}

	t.Run("persists then pushes notification and stats", func(t *testing.T) {
		store := &mockStore{}
		store.On("CreateNotification", ctx, "t1", params).Return(created, nil).Once()
		store.On("Stats", ctx, "t1", "u1").Return(notifications.Stats{Total: 5, Unread: 2}, nil).Once()
		ws := newHub("u1")

		b := broadcast.New(broadcast.WithPersistent(ws), broadcast.WithStore(store), broadcast.WithLogger(logger.Discard()))
		n, err := b.CreateAndBroadcast(ctx, "t1", params)
		require.NoError(t, err)
		assert.Equal(t, "n1", n.ID)
		assert.Equal(t, []string{realtime.EventNotification, realtime.EventStatsUpdate}, ws.types())
		store.AssertExpectations(t)
	})

	t.Run("stats failure is not returned", func(t *testing.T) {
		store := &mockStore{}
		store.On("CreateNotification", ctx, "t1", params).Return(created, nil).Once()
		store.On("Stats", ctx, "t1", "u1").Return(notifications.Stats{}, errors.New("timeout")).Once()
		ws := newHub("u1")

		b := broadcast.New(broadcast.WithPersistent(ws), broadcast.WithStore(store), broadcast.WithLogger(logger.Discard()))
		_, err := b.CreateAndBroadcast(ctx, "t1", params)
		require.NoError(t, err)
		assert.Equal(t, []string{realtime.EventNotification}, ws.types())
	})

	t.Run("persistence failure is returned and nothing is pushed", func(t *testing.T) {
		boom := errors.New("db down")
		store := &mockStore{}
		store.On("CreateNotification", ctx, "t1", params).Return(notifications.Notification{}, boom).Once()
		ws := newHub("u1")

		b := broadcast.New(broadcast.WithPersistent(ws), broadcast.WithStore(store), broadcast.WithLogger(logger.Discard()))
		_, err := b.CreateAndBroadcast(ctx, "t1", params)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, ws.types())
		store.AssertNotCalled(t, "Stats", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no store", func(t *testing.T) {
		_, err := broadcast.New().CreateAndBroadcast(ctx, "t1", params)
		assert.ErrorIs(t, err, broadcast.ErrNoStore)
	})
}

func TestBroadcaster_WithRealHub(t *testing.T) {
	t.Parallel()
	reg := realtime.NewRegistry(realtime.WithRegistryLogger(logger.Discard()))
	b := broadcast.New(broadcast.WithStreaming(reg), broadcast.WithLogger(logger.Discard()))
	assert.False(t, b.BroadcastToUser(context.Background(), "t1", "u1", notifications.Notification{}).Delivered())
}
