package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/relay/internal/cachemanager"
	"github.com/zjrosen/relay/internal/log"
)

// Logging returns a link that logs the outcome of the rest of the chain for
// every value.
func Logging[T any](cat log.Category) Link[T] {
	return Middleware("logging", func(next Handler[T]) Handler[T] {
		return HandlerFunc[T](func(ctx context.Context, v T) bool {
			start := time.Now()
			handled := next.Handle(ctx, v)
			log.Debug(cat, "chain processed",
				"value", fmt.Sprint(v),
				"handled", handled,
				"duration", time.Since(start),
			)
			return handled
		})
	})
}

// DefaultDedupWindow is how long Dedup remembers a value.
const DefaultDedupWindow = 250 * time.Millisecond

// Dedup returns a link that stops values whose key was already seen within
// window. Stopped values are reported unhandled and never reach later links.
// A nil key function uses fmt.Sprint.
func Dedup[T any](cache cachemanager.CacheManager[time.Time], window time.Duration, key func(T) string) Link[T] {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	if key == nil {
		key = func(v T) string { return fmt.Sprint(v) }
	}
	return Middleware("dedup", func(next Handler[T]) Handler[T] {
		return HandlerFunc[T](func(ctx context.Context, v T) bool {
			k := key(v)
			if !cache.Add(ctx, k, time.Now(), window) {
				log.Debug(log.CatChain, "duplicate suppressed", "key", k, "window", window)
				return false
			}
			return next.Handle(ctx, v)
		})
	})
}
