// Package redis wires go-redis/v9 into the service: Connect with retry,
// a Healthcheck probe, and JSONCache, a small prefixed key/value cache for
// JSON-encoded lookups.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	cache := redis.NewJSONCache(client, cfg.KeyPrefix, cfg.CacheTTL)
package redis
