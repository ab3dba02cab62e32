package realtime_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/realtime"
)

type fakeConn struct {
	id   string
	key  realtime.Key
	fail bool

	mu     sync.Mutex
	events []realtime.Event
	closed bool
}

func newFakeConn(tenantID, userID, id string) *fakeConn {
	return &fakeConn{id: id, key: realtime.Key{TenantID: tenantID, UserID: userID}}
}

func (c *fakeConn) ID() string { return c.id }
func (c *fakeConn) Key() realtime.Key { return c.key }

func (c *fakeConn) Send(e realtime.Event) error {
	if c.fail {
		return errors.New("broken pipe")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() []realtime.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]realtime.Event(nil), c.events...)
}

func newRegistry() *realtime.Registry {
	return realtime.NewRegistry(realtime.WithRegistryLogger(logger.Discard()))
}

func TestRegistry_RegisterUnregister(t *testing.T) {
	t.Parallel()
	r := newRegistry()
	a := newFakeConn("t1", "u1", "a")
	b := newFakeConn("t1", "u1", "b")
	c := newFakeConn("t1", "u2", "c")

	r.Register(a)
	r.Register(b)
	r.Register(c)
	assert.Equal(t, 3, r.Count())
	assert.Equal(t, 2, r.CountForUser("t1", "u1"))
	assert.Equal(t, 3, r.CountForTenant("t1"))

	// re-registering the same handle keeps counts
	r.Register(a)
	assert.Equal(t, 3, r.Count())

	r.Unregister(a)
	r.Unregister(a)
	assert.Equal(t, 1, r.CountForUser("t1", "u1"))

	r.Unregister(b)
	assert.Equal(t, 0, r.CountForUser("t1", "u1"))
	assert.Equal(t, 1, r.CountForTenant("t1"))

	// unknown connection
	r.Unregister(newFakeConn("t9", "u9", "zz"))
	assert.Equal(t, 1, r.Count())
}

func TestRegistry_SendToUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRegistry()

	ok := r.SendToUser(ctx, "t1", "u1", realtime.Event{Type: realtime.EventNotification})
	assert.False(t, ok, "no connections")

	good := newFakeConn("t1", "u1", "good")
	bad := newFakeConn("t1", "u1", "bad")
	bad.fail = true
	other := newFakeConn("t2", "u1", "other")
	r.Register(good)
	r.Register(bad)
	r.Register(other)

	ok = r.SendToUser(ctx, "t1", "u1", realtime.Event{Type: realtime.EventNotification, Data: "x"})
	assert.True(t, ok)
	require.Len(t, good.received(), 1)
	assert.Equal(t, "x", good.received()[0].Data)
	assert.Empty(t, other.received(), "other tenant must not receive")

	r.Unregister(good)
	assert.False(t, r.SendToUser(ctx, "t1", "u1", realtime.Event{Type: realtime.EventNotification}),
		"only failing handle left")
}

func TestRegistry_SendToTenant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRegistry()
	for i := range 3 {
		r.Register(newFakeConn("t1", fmt.Sprintf("u%d", i), fmt.Sprintf("c%d", i)))
	}
	broken := newFakeConn("t1", "u9", "broken")
	broken.fail = true
	r.Register(broken)
	outsider := newFakeConn("t2", "u1", "outsider")
	r.Register(outsider)

	assert.Equal(t, 3, r.SendToTenant(ctx, "t1", realtime.Event{Type: realtime.EventNotification}))
	assert.Empty(t, outsider.received())
	assert.Equal(t, 0, r.SendToTenant(ctx, "t3", realtime.Event{Type: realtime.EventNotification}))
}

func TestRegistry_SendToUser_OnlyTouchesUserConnections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRegistry()

	var others []*fakeConn
	for i := range 50 {
		c := newFakeConn(fmt.Sprintf("t%d", i%5), fmt.Sprintf("u%d", i), fmt.Sprintf("c%d", i))
		others = append(others, c)
		r.Register(c)
	}
	target := newFakeConn("t1", "nurse-1", "target")
	r.Register(target)
	sameUserOtherTenant := newFakeConn("t2", "nurse-1", "shadow")
	r.Register(sameUserOtherTenant)

	assert.True(t, r.SendToUser(ctx, "t1", "nurse-1", realtime.Event{Type: realtime.EventNotification}))
	assert.Len(t, target.received(), 1)
	assert.Empty(t, sameUserOtherTenant.received())
	for _, c := range others {
		assert.Empty(t, c.received())
	}
}

func TestRegistry_EachAndDrain(t *testing.T) {
	t.Parallel()
	r := newRegistry()
	r.Register(newFakeConn("t1", "u1", "a"))
	r.Register(newFakeConn("t1", "u2", "b"))

	r.Each(func(c realtime.Conn) {
		if c.ID() == "a" {
			r.Unregister(c)
		}
	})
	assert.Equal(t, 1, r.Count())

	drained := r.Drain()
	require.Len(t, drained, 1)
	assert.Equal(t, "b", drained[0].ID())
	assert.Equal(t, 0, r.Count())
}

func TestRegistry_Concurrent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := newRegistry()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newFakeConn("t1", fmt.Sprintf("u%d", i%5), fmt.Sprintf("c%d", i))
			r.Register(c)
			r.SendToTenant(ctx, "t1", realtime.Event{Type: realtime.EventNotification})
			if i%2 == 0 {
				r.Unregister(c)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 25, r.Count())
}
