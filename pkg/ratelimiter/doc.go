// Package ratelimiter implements token bucket rate limiting for the HTTP
// surface: dispatch calls are limited per tenant and realtime connects per
// client address.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//	b, err := ratelimiter.NewBucket(store, cfg)
//	r.Use(ratelimiter.Middleware(b, ratelimiter.ByTenant, log))
package ratelimiter
