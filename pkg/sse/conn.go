package sse

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/dmitrymomot/carenotify/pkg/realtime"
)

// conn is a registered event stream. Events are written only by pump, which
// runs on the request goroutine.
type conn struct {
	id        string
	key       realtime.Key
	out       *realtime.Outbox
	gen       *datastar.ServerSentEventGenerator
	lastID    uint64
	closeOnce sync.Once
}

func newConn(gen *datastar.ServerSentEventGenerator, key realtime.Key, outboxSize int) *conn {
	return &conn{
		id:  uuid.New().String(),
		key: key,
		out: realtime.NewOutbox(outboxSize),
		gen: gen,
	}
}

func (c *conn) ID() string { return c.id }

func (c *conn) Key() realtime.Key { return c.key }

func (c *conn) Send(e realtime.Event) error {
	return c.out.Push(e)
}

// Close stops the stream once queued events are written.
func (c *conn) Close() error {
	c.closeOnce.Do(func() { c.out.Close() })
	return nil
}

// pump writes queued events until the outbox is closed, a write fails or the
// client goes away.
func (c *conn) pump(ctx context.Context) error {
	for {
		select {
		case e := <-c.out.Events():
			if err := c.write(e); err != nil {
				c.out.Close()
				return err
			}
		case <-c.out.Done():
			return c.flush()
		case <-ctx.Done():
			c.out.Close()
			return nil
		}
	}
}

func (c *conn) flush() error {
	for {
		select {
		case e := <-c.out.Events():
			if err := c.write(e); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// write emits one frame: id is a per-connection counter, the event name is
// the event type and data is the JSON payload.
func (c *conn) write(e realtime.Event) error {
	payload := []byte("{}")
	if e.Data != nil {
		b, err := json.Marshal(e.Data)
		if err != nil {
			return err
		}
		payload = b
	}
	c.lastID++
	return c.gen.Send(
		datastar.EventType(e.Type),
		[]string{string(payload)},
		datastar.WithSSEEventId(strconv.FormatUint(c.lastID, 10)),
	)
}
