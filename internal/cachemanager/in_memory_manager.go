package cachemanager

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/relay/internal/log"
)

const DefaultExpiration = 5 * time.Second
const DefaultCleanupInterval = 30 * time.Second

// NewInMemoryCacheManager creates a cache whose entries expire after
// defaultExpiration unless Set/Add pass their own TTL.
func NewInMemoryCacheManager[V any](useCase string, defaultExpiration, cleanupInterval time.Duration) *InMemoryCacheManager[V] {
	return &InMemoryCacheManager[V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
	}
}

// InMemoryCacheManager is the go-cache backed CacheManager.
type InMemoryCacheManager[V any] struct {
	useCase string
	cache   *gocache.Cache
}

var _ CacheManager[struct{}] = (*InMemoryCacheManager[struct{}])(nil)

// Get retrieves an item from the cache by its key.
func (c *InMemoryCacheManager[V]) Get(_ context.Context, key string) (V, bool) {
	var zeroValue V

	value, found := c.cache.Get(key)
	if !found {
		return zeroValue, false
	}

	v, ok := value.(V)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "use_case", c.useCase, "key", key)
		return zeroValue, false
	}

	return v, true
}

// Set stores value under key for ttl. A zero ttl uses the default expiration.
func (c *InMemoryCacheManager[V]) Set(_ context.Context, key string, value V, ttl time.Duration) {
	c.cache.Set(key, value, normalizeTTL(ttl))
}

// Add stores value only if key is not already live.
func (c *InMemoryCacheManager[V]) Add(_ context.Context, key string, value V, ttl time.Duration) bool {
	if err := c.cache.Add(key, value, normalizeTTL(ttl)); err != nil {
		log.Debug(log.CatCache, "cache hit on add", "use_case", c.useCase, "key", key)
		return false
	}
	return true
}

// Delete removes the given keys.
func (c *InMemoryCacheManager[V]) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		c.cache.Delete(key)
	}
}

// Flush removes every entry.
func (c *InMemoryCacheManager[V]) Flush(_ context.Context) {
	c.cache.Flush()
}

// Len returns the number of entries, including expired ones not yet cleaned up.
func (c *InMemoryCacheManager[V]) Len() int {
	return c.cache.ItemCount()
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return gocache.DefaultExpiration
	}
	return ttl
}
