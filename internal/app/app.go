// Package app assembles the notification service from its configuration.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/carenotify/pkg/broadcast"
	"github.com/dmitrymomot/carenotify/pkg/delivery"
	"github.com/dmitrymomot/carenotify/pkg/email"
	"github.com/dmitrymomot/carenotify/pkg/httpserver"
	"github.com/dmitrymomot/carenotify/pkg/jwt"
	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/ratelimiter"
	"github.com/dmitrymomot/carenotify/pkg/realtime"
	"github.com/dmitrymomot/carenotify/pkg/sms"
	"github.com/dmitrymomot/carenotify/pkg/sse"
	"github.com/dmitrymomot/carenotify/pkg/websocket"
)

// App holds the wired components of a running service.
type App struct {
	settings Settings
	logger   *slog.Logger

	tokens       *jwt.Service
	backend      *backend
	ws           *websocket.Hub
	sse          *sse.Hub
	broadcaster  *broadcast.Broadcaster
	tracker      *delivery.Tracker
	orchestrator *delivery.Orchestrator

	dispatchLimit *ratelimiter.Bucket
	connectLimit  *ratelimiter.Bucket
}

// Option overrides a component, mostly for tests.
type Option func(*options)

type options struct {
	mailer email.EmailSender
	texter sms.Sender
}

// WithMailer replaces the email transport built from Settings.Email.
func WithMailer(m email.EmailSender) Option {
	return func(o *options) { o.mailer = m }
}

// WithTexter replaces the SMS transport built from Settings.SMS.
func WithTexter(s sms.Sender) Option {
	return func(o *options) { o.texter = s }
}

// New connects the configured backends and wires the delivery pipeline.
// Close releases what New opened.
func New(ctx context.Context, s Settings, log *slog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	tokens, err := jwt.NewFromConfig(s.JWT)
	if err != nil {
		return nil, err
	}

	b, err := openBackend(ctx, s, log)
	if err != nil {
		return nil, err
	}

	a := &App{settings: s, logger: log, tokens: tokens, backend: b}
	if err := a.wire(ctx, o); err != nil {
		_ = b.close(context.WithoutCancel(ctx))
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context, o options) error {
	s, log := a.settings, a.logger

	var err error
	if a.dispatchLimit, err = a.limiter(s.DispatchLimit); err != nil {
		return err
	}
	if a.connectLimit, err = a.limiter(s.ConnectLimit); err != nil {
		return err
	}

	auth := realtime.NewAuthenticator(a.tokens)
	a.ws = websocket.NewHub(auth, websocket.WithConfig(s.WS), websocket.WithLogger(log))
	a.sse = sse.NewHub(auth, sse.WithConfig(s.SSE), sse.WithLogger(log))

	a.broadcaster = broadcast.New(
		broadcast.WithPersistent(a.ws),
		broadcast.WithStreaming(a.sse),
		broadcast.WithStore(a.backend.store),
		broadcast.WithLogger(log),
	)
	a.tracker = delivery.NewTracker(a.backend.log, log)

	mailer := o.mailer
	if mailer == nil {
		m, err := email.NewFromConfig(s.Email)
		if err != nil {
			return err
		}
		mailer = m
	}
	texter := o.texter
	if texter == nil && s.SMS.Enabled {
		t, err := sms.New(ctx, s.SMS, log)
		if err != nil {
			return err
		}
		texter = t
	}

	senderOpts := []delivery.SenderOption{
		delivery.WithSenderLogger(log),
		delivery.WithAttemptTracker(a.tracker),
		delivery.WithDefaultMaxAttempts(s.Delivery.MaxAttempts),
		delivery.WithFooter(s.Delivery.EmailFooter),
	}
	if s.Delivery.BackoffBase > 0 {
		senderOpts = append(senderOpts, delivery.WithBackoffBase(s.Delivery.BackoffBase))
	}
	stores := a.backend.stores()

	a.orchestrator = delivery.NewOrchestrator(a.backend.store, a.backend.settings,
		delivery.WithInApp(a.broadcaster),
		delivery.WithEmail(delivery.NewEmailSender(mailer, stores, senderOpts...)),
		delivery.WithSMS(delivery.NewSMSSender(texter, stores,
			append(senderOpts, delivery.WithServiceEnabled(s.SMS.Enabled))...)),
		delivery.WithTracker(a.tracker),
		delivery.WithMaxAttempts(s.Delivery.MaxAttempts),
		delivery.WithConcurrency(s.Delivery.Concurrency),
		delivery.WithLogger(log),
	)
	return nil
}

// limiter returns nil when cfg disables limiting.
func (a *App) limiter(cfg ratelimiter.Config) (*ratelimiter.Bucket, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	store := ratelimiter.NewMemoryStore()
	a.backend.closers = append(a.backend.closers, func(context.Context) error {
		store.Close()
		return nil
	})
	return ratelimiter.NewBucket(store, cfg)
}

// Start launches the hub keepalive loops.
func (a *App) Start() {
	a.ws.Start()
	a.sse.Start()
	a.logger.Info("realtime hubs started", logger.Component("app"))
}

// Orchestrator returns the delivery entry point.
func (a *App) Orchestrator() *delivery.Orchestrator { return a.orchestrator }

// Broadcaster returns the in-app fan-out.
func (a *App) Broadcaster() *broadcast.Broadcaster { return a.broadcaster }

// Tokens returns the token service used by the realtime endpoints.
func (a *App) Tokens() *jwt.Service { return a.tokens }

// Handler returns the HTTP surface of the service.
func (a *App) Handler() http.Handler { return a.router() }

// ServerOptions returns the shutdown sequence for httpserver: hubs are
// drained before the listener closes, pending attempt writes and backend
// connections are released after.
func (a *App) ServerOptions() []httpserver.Option {
	return []httpserver.Option{
		httpserver.WithLogger(a.logger),
		httpserver.WithDrainHook(a.ws.Shutdown),
		httpserver.WithDrainHook(a.sse.Shutdown),
		httpserver.WithStopHook(a.tracker.WaitContext),
		httpserver.WithStopHook(a.backend.close),
	}
}

// Close shuts everything down outside of an httpserver run.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(
		a.ws.Shutdown(ctx),
		a.sse.Shutdown(ctx),
		a.tracker.WaitContext(ctx),
		a.backend.close(ctx),
	)
}
