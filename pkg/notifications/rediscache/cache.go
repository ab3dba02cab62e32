// Package rediscache puts a Redis read-through cache in front of the
// settings, recipient and template lookups the delivery pipeline performs
// for every attempt.
package rediscache

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/carenotify/pkg/logger"
	"github.com/dmitrymomot/carenotify/pkg/notifications"
	"github.com/dmitrymomot/carenotify/pkg/redis"
)

// Source is the store behind the cache.
type Source interface {
	notifications.SettingsStore
	notifications.RecipientStore
	notifications.TemplateStore
}

// Cache serves lookups from Redis and falls back to Source on a miss.
// Redis failures are logged and never fail a lookup. "Not found" answers are
// cached too, so users without stored preferences do not hit the database on
// every delivery.
type Cache struct {
	kv     *redis.JSONCache
	next   Source
	logger *slog.Logger
}

var (
	_ notifications.SettingsStore  = (*Cache)(nil)
	_ notifications.RecipientStore = (*Cache)(nil)
	_ notifications.TemplateStore  = (*Cache)(nil)
)

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the cache logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New wraps next with kv.
func New(kv *redis.JSONCache, next Source, opts ...Option) *Cache {
	c := &Cache{kv: kv, next: next, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logger.Component("rediscache"))
	return c
}

// settingsEntry is nil-able so a missing row can be cached.
type settingsEntry struct {
	Settings *notifications.Settings `json:"settings"`
}

type templateEntry struct {
	Template *notifications.Template `json:"template"`
}

func (c *Cache) GetSettings(ctx context.Context, tenantID, userID, notifType string) (*notifications.Settings, error) {
	key := c.settingsKey(tenantID, userID, notifType)

	var e settingsEntry
	if c.load(ctx, key, &e) {
		if e.Settings == nil {
			return nil, notifications.ErrSettingsNotFound
		}
		return e.Settings, nil
	}

	s, err := c.next.GetSettings(ctx, tenantID, userID, notifType)
	switch {
	case err == nil:
		c.store(ctx, key, settingsEntry{Settings: s})
	case errors.Is(err, notifications.ErrSettingsNotFound):
		c.store(ctx, key, settingsEntry{})
	}
	return s, err
}

func (c *Cache) GetEmail(ctx context.Context, tenantID, userID string) (string, error) {
	return c.contact(ctx, "email", tenantID, userID, c.next.GetEmail)
}

func (c *Cache) GetPhone(ctx context.Context, tenantID, userID string) (string, error) {
	return c.contact(ctx, "phone", tenantID, userID, c.next.GetPhone)
}

type contactLookup func(ctx context.Context, tenantID, userID string) (string, error)

func (c *Cache) contact(ctx context.Context, kind, tenantID, userID string, lookup contactLookup) (string, error) {
	key := c.contactKey(kind, tenantID, userID)

	var v string
	if c.load(ctx, key, &v) {
		return v, nil
	}
	v, err := lookup(ctx, tenantID, userID)
	if err != nil {
		return "", err
	}
	c.store(ctx, key, v)
	return v, nil
}

func (c *Cache) GetTemplate(ctx context.Context, notifType string) (*notifications.Template, error) {
	key := c.templateKey(notifType)

	var e templateEntry
	if c.load(ctx, key, &e) {
		if e.Template == nil {
			return nil, notifications.ErrTemplateNotFound
		}
		return e.Template, nil
	}

	t, err := c.next.GetTemplate(ctx, notifType)
	switch {
	case err == nil:
		c.store(ctx, key, templateEntry{Template: t})
	case errors.Is(err, notifications.ErrTemplateNotFound):
		c.store(ctx, key, templateEntry{})
	}
	return t, err
}

// InvalidateSettings drops the cached preferences of one user for one type.
func (c *Cache) InvalidateSettings(ctx context.Context, tenantID, userID, notifType string) error {
	return c.kv.Delete(ctx, c.settingsKey(tenantID, userID, notifType))
}

// InvalidateContacts drops the cached email and phone of a user.
func (c *Cache) InvalidateContacts(ctx context.Context, tenantID, userID string) error {
	return c.kv.Delete(ctx, c.contactKey("email", tenantID, userID), c.contactKey("phone", tenantID, userID))
}

// InvalidateTemplates drops the cached templates of the given types.
func (c *Cache) InvalidateTemplates(ctx context.Context, types ...string) error {
	keys := make([]string, 0, len(types))
	for _, t := range types {
		keys = append(keys, c.templateKey(t))
	}
	return c.kv.Delete(ctx, keys...)
}

func (c *Cache) settingsKey(tenantID, userID, notifType string) string {
	return c.kv.Key("settings", tenantID, userID, notifType)
}

func (c *Cache) contactKey(kind, tenantID, userID string) string {
	return c.kv.Key("contact", kind, tenantID, userID)
}

func (c *Cache) templateKey(notifType string) string {
	return c.kv.Key("template", notifType)
}

func (c *Cache) load(ctx context.Context, key string, dst any) bool {
	err := c.kv.Get(ctx, key, dst)
	if err == nil {
		return true
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		c.logger.WarnContext(ctx, "cache read failed", slog.String("key", key), logger.Error(err))
	}
	return false
}

func (c *Cache) store(ctx context.Context, key string, v any) {
	if err := c.kv.Set(ctx, key, v); err != nil {
		c.logger.WarnContext(ctx, "cache write failed", slog.String("key", key), logger.Error(err))
	}
}
