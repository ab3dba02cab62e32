package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	gws "github.com/gorilla/websocket"

	"github.com/dmitrymomot/carenotify/pkg/realtime"
)

// conn is a registered WebSocket client. All data frames are written by
// writePump; control frames use WriteControl, which gorilla allows
// concurrently.
type conn struct {
	id           string
	key          realtime.Key
	ws           *gws.Conn
	out          *realtime.Outbox
	writeTimeout time.Duration

	// alive is set by any inbound frame or pong and cleared by each sweep.
	alive atomic.Bool

	closeOnce   sync.Once
	closeCode   int
	closeReason string
	pumpDone    chan struct{}
}

func newConn(ws *gws.Conn, key realtime.Key, cfg Config) *conn {
	c := &conn{
		id:           uuid.New().String(),
		key:          key,
		ws:           ws,
		out:          realtime.NewOutbox(cfg.OutboxSize),
		writeTimeout: cfg.WriteTimeout,
		pumpDone:     make(chan struct{}),
	}
	c.alive.Store(true)
	return c
}

func (c *conn) ID() string { return c.id }
func (c *conn) Key() realtime.Key { return c.key }

// Send queues the event. It fails when the outbox is full or closed.
func (c *conn) Send(e realtime.Event) error {
	return c.out.Push(e)
}

// Close ends the connection with a normal closure frame.
func (c *conn) Close() error {
	c.closeWith(gws.CloseNormalClosure, "")
	return nil
}

func (c *conn) closeWith(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closeCode = code
		c.closeReason = reason
		c.out.Close()
	})
}

func (c *conn) ping() error {
	return c.ws.WriteControl(gws.PingMessage, nil, time.Now().Add(c.writeTimeout))
}

func (c *conn) writePump() {
	defer close(c.pumpDone)
	defer c.ws.Close()

	for {
		select {
		case e := <-c.out.Events():
			if err := c.write(e); err != nil {
				c.out.Close()
				return
			}
		case <-c.out.Done():
			c.flush()
			_ = c.ws.WriteControl(gws.CloseMessage,
				gws.FormatCloseMessage(c.closeCode, c.closeReason),
				time.Now().Add(c.writeTimeout))
			return
		}
	}
}

// flush writes whatever is still queued once the outbox is closed.
func (c *conn) flush() {
	for {
		select {
		case e := <-c.out.Events():
			if err := c.write(e); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *conn) write(e realtime.Event) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteJSON(e)
}
