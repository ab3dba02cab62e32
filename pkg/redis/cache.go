package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is the subset of redis.UniversalClient used by JSONCache.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// JSONCache stores JSON-encoded values under a common key prefix.
type JSONCache struct {
	db     KV
	prefix string
	ttl    time.Duration
}

// NewJSONCache creates a cache. A zero ttl keeps entries until deleted.
func NewJSONCache(db KV, prefix string, ttl time.Duration) *JSONCache {
	return &JSONCache{db: db, prefix: strings.TrimSuffix(prefix, ":"), ttl: ttl}
}

// Key joins parts with ":" under the cache prefix.
func (c *JSONCache) Key(parts ...string) string {
	if c.prefix == "" {
		return strings.Join(parts, ":")
	}
	return c.prefix + ":" + strings.Join(parts, ":")
}

// Get decodes the value stored at key into dst. It returns ErrCacheMiss when
// the key does not exist.
func (c *JSONCache) Get(ctx context.Context, key string, dst any) error {
	raw, err := c.db.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Set encodes v and stores it at key.
func (c *JSONCache) Set(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.db.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes keys. Missing keys are not an error.
func (c *JSONCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.db.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
