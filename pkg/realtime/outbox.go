package realtime

import "sync"

// DefaultOutboxSize is the number of events buffered per connection.
const DefaultOutboxSize = 64

// Outbox is a bounded per-connection queue drained by the connection's write
// pump. Push never blocks: a full or closed outbox fails the write.
type Outbox struct {
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewOutbox creates an outbox with the given capacity.
func NewOutbox(size int) *Outbox {
	if size <= 0 {
		size = DefaultOutboxSize
	}
	return &Outbox{
		events: make(chan Event, size),
		done:   make(chan struct{}),
	}
}

// Push queues the event.
func (o *Outbox) Push(e Event) error {
	select {
	case <-o.done:
		return ErrConnClosed
	default:
	}
	select {
	case o.events <- e:
		return nil
	default:
		return ErrOutboxFull
	}
}

// Events is read by the write pump.
func (o *Outbox) Events() <-chan Event { return o.events }

// Done is closed once the outbox is closed.
func (o *Outbox) Done() <-chan struct{} { return o.done }

// Close stops accepting events. It reports true on the first call only.
func (o *Outbox) Close() bool {
	closed := false
	o.closeOnce.Do(func() {
		close(o.done)
		closed = true
	})
	return closed
}

// Closed reports whether Close was called.
func (o *Outbox) Closed() bool {
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}
