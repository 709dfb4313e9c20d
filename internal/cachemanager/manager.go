// Package cachemanager wraps an in-memory expiring cache behind a small
// typed interface. The handler chain uses it to remember recently seen events.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager stores values of type V under string keys with a TTL.
type CacheManager[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V, ttl time.Duration)
	// Add stores value only when key is absent or expired and reports
	// whether it did.
	Add(ctx context.Context, key string, value V, ttl time.Duration) bool
	Delete(ctx context.Context, keys ...string)
	Flush(ctx context.Context)
	Len() int
}
