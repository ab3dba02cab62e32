package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/carenotify/pkg/delivery"
	"github.com/dmitrymomot/carenotify/pkg/httpserver"
	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/mongo"
	"github.com/dmitrymomot/carenotify/pkg/notifications"
	"github.com/dmitrymomot/carenotify/pkg/notifications/mongolog"
	"github.com/dmitrymomot/carenotify/pkg/notifications/pgstore"
	"github.com/dmitrymomot/carenotify/pkg/notifications/rediscache"
	"github.com/dmitrymomot/carenotify/pkg/pg"
	"github.com/dmitrymomot/carenotify/pkg/redis"
)

// source is what a primary store offers besides notification creation.
type source interface {
	notifications.Store
	notifications.DeliveryLog
	rediscache.Source
}

// backend is the storage side of the service: a primary store, an optional
// lookup cache in front of it and an optional attempt archive beside it.
type backend struct {
	store     notifications.Store
	settings  notifications.SettingsStore
	lookups   rediscache.Source
	log       notifications.DeliveryLog
	probes    map[string]httpserver.Probe
	closers   []func(context.Context) error
	templates notifications.TemplateSet
}

func openBackend(ctx context.Context, s Settings, log *slog.Logger) (*backend, error) {
	b := &backend{probes: make(map[string]httpserver.Probe)}
	ready := false
	defer func() {
		if !ready {
			_ = b.close(context.WithoutCancel(ctx))
		}
	}()

	if s.App.TemplatesFile != "" {
		var err error
		if b.templates, err = notifications.LoadTemplatesYAML(s.App.TemplatesFile); err != nil {
			return nil, err
		}
	}

	var primary source
	switch s.App.Storage {
	case StorageMemory:
		mem := notifications.NewMemoryStore()
		for _, t := range b.templates {
			mem.PutTemplate(t)
		}
		primary = mem
	case StoragePostgres:
		pool, err := pg.Connect(ctx, s.PG)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func(context.Context) error { pool.Close(); return nil })
		b.probes["postgres"] = pg.Healthcheck(pool)

		if s.App.AutoMigrate {
			if err := pg.Migrate(ctx, pool, s.PG, pgstore.Migrations, log); err != nil {
				return nil, err
			}
		}
		store := pgstore.New(pool)
		if len(b.templates) > 0 {
			if err := store.SeedTemplates(ctx, b.templates); err != nil {
				return nil, fmt.Errorf("seed templates: %w", err)
			}
		}
		primary = store
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStorage, s.App.Storage)
	}
	b.store, b.settings, b.lookups, b.log = primary, primary, primary, primary

	if s.App.CacheEnabled {
		client, err := redis.Connect(ctx, s.Redis)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func(context.Context) error { return client.Close() })
		b.probes["redis"] = redis.Healthcheck(client)

		cache := rediscache.New(
			redis.NewJSONCache(client, s.Redis.KeyPrefix, s.Redis.CacheTTL),
			primary,
			rediscache.WithLogger(log),
		)
		// Templates may have just been reseeded.
		if len(b.templates) > 0 {
			if err := cache.InvalidateTemplates(ctx, b.templates.Types()...); err != nil {
				log.WarnContext(ctx, "failed to invalidate cached templates", logger.Error(err))
			}
		}
		b.settings, b.lookups = cache, cache
	}

	if s.App.ArchiveEnabled {
		db, err := mongo.NewWithDatabase(ctx, s.Mongo)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, db.Client().Disconnect)
		b.probes["mongo"] = mongo.Healthcheck(db.Client())

		coll := db.Collection(mongolog.DefaultCollection)
		if err := mongolog.EnsureIndexes(ctx, coll); err != nil {
			return nil, err
		}
		b.log = notifications.MultiLog{primary, mongolog.New(coll)}
	}

	log.InfoContext(ctx, "storage ready",
		slog.String("storage", s.App.Storage),
		slog.Bool("cache", s.App.CacheEnabled),
		slog.Bool("archive", s.App.ArchiveEnabled),
		slog.Int("templates", len(b.templates)),
	)
	ready = true
	return b, nil
}

func (b *backend) stores() delivery.Stores {
	return delivery.Stores{Settings: b.settings, Recipients: b.lookups, Templates: b.lookups}
}

// close releases backends in reverse order of opening.
func (b *backend) close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
