package delivery

import (
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// SenderOption configures EmailSender and SMSSender.
type SenderOption func(*pipeline)

// WithSenderLogger sets the sender logger.
func WithSenderLogger(l *slog.Logger) SenderOption {
	return func(p *pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithAttemptTracker sets where attempts are recorded. Without it nothing
// is recorded.
func WithAttemptTracker(t *Tracker) SenderOption {
	return func(p *pipeline) { p.tracker = t }
}

// WithClock overrides the time source used for quiet hours.
func WithClock(now func() time.Time) SenderOption {
	return func(p *pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithBackoffBase sets the delay before the first retry. Each following
// retry doubles it.
func WithBackoffBase(d time.Duration) SenderOption {
	return func(p *pipeline) {
		if d > 0 {
			p.backoffBase = d
		}
	}
}

// WithBackoffDecorator wraps the retry backoff, for example to cap or
// observe the delays.
func WithBackoffDecorator(fn func(retry.Backoff) retry.Backoff) SenderOption {
	return func(p *pipeline) { p.decorate = fn }
}

// WithDefaultMaxAttempts sets the attempt budget used when SendWithRetry is
// called with a non-positive count.
func WithDefaultMaxAttempts(n int) SenderOption {
	return func(p *pipeline) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithFooter sets the footer line of the email layout.
func WithFooter(footer string) SenderOption {
	return func(p *pipeline) { p.footer = footer }
}

// WithServiceEnabled toggles the service-wide SMS switch. Senders are
// enabled by default.
func WithServiceEnabled(enabled bool) SenderOption {
	return func(p *pipeline) { p.serviceEnabled = enabled }
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithInApp sets the broadcaster used for the in-app channel.
func WithInApp(b InApp) Option {
	return func(o *Orchestrator) { o.inApp = b }
}

// WithEmail sets the email channel sender.
func WithEmail(s ChannelSender) Option {
	return func(o *Orchestrator) { o.email = s }
}

// WithSMS sets the SMS channel sender.
func WithSMS(s ChannelSender) Option {
	return func(o *Orchestrator) { o.sms = s }
}

// WithPush replaces the push channel sender.
func WithPush(s ChannelSender) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.push = s
		}
	}
}

// WithTracker sets where in-app attempts are recorded.
func WithTracker(t *Tracker) Option {
	return func(o *Orchestrator) { o.tracker = t }
}

// WithMaxAttempts sets the attempt budget passed to the email and SMS senders.
func WithMaxAttempts(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithConcurrency bounds parallel per-user deliveries in batch calls.
// Values below 1 mean sequential.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n < 1 {
			n = 1
		}
		o.concurrency = n
	}
}

// WithLogger sets the orchestrator logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}
