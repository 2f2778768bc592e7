package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ErrInvalidResultType is returned when a cached value does not match the
// type the caller asked for. It indicates two call sites sharing a key with
// different types, which is a programming error.
var ErrInvalidResultType = errors.New("cache: cached value does not match requested type")

// LoaderFn fetches a value from the source of truth on a cache miss.
// It is typically a closure over a database query. The cache imposes no
// timeout on loaders; cancellation belongs to the caller's context.
type LoaderFn[T any] func(ctx context.Context) (T, error)

// Seed is one key/value pair produced by a bulk warm-up loader.
type Seed[T any] struct {
	Key  string
	Data T
}

// BulkLoaderFn produces the seed entries for WarmUp.
type BulkLoaderFn[T any] func(ctx context.Context) ([]Seed[T], error)

// GetWithCache is the cache-aside read path: return the cached value on a
// hit, otherwise run the loader, store its result under key with the cache's
// default TTL, and return it.
//
// Concurrent misses for the same key are coalesced: only one loader runs and
// every waiting caller receives its result. A loader error is propagated
// unmodified to all waiters and nothing is cached, so a later call retries.
func GetWithCache[T any](ctx context.Context, c *SmartCache[any], key string, loader LoaderFn[T]) (T, error) {
	return GetWithCacheTTL(ctx, c, key, loader, 0)
}

// GetWithCacheTTL is GetWithCache with an explicit TTL for the stored entry.
// A ttl <= 0 uses the cache default.
func GetWithCacheTTL[T any](ctx context.Context, c *SmartCache[any], key string, loader LoaderFn[T], ttl time.Duration) (T, error) {
	if v, ok := c.Get(key); ok {
		return assertType[T](v)
	}

	v, err, _ := c.flight.Do(key, func() (any, error) {
		// Another flight may have stored the key while we queued.
		if v, ok := c.peek(key); ok {
			return v, nil
		}
		loaded, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		c.SetWithTTL(key, loaded, ttl)
		return any(loaded), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return assertType[T](v)
}

// InvalidatePattern deletes every key containing pattern as a literal
// substring and returns the number removed. The scan is O(n) over the
// current key set; there is no index.
func InvalidatePattern[T any](c *SmartCache[T], pattern string) int {
	removed := 0
	for _, key := range c.Keys() {
		if strings.Contains(key, pattern) && c.Delete(key) {
			removed++
		}
	}
	return removed
}

// WarmUp seeds the cache from a bulk loader. A loader failure is logged and
// swallowed: warm-up is an optimization, never a correctness requirement.
// A ttl <= 0 uses the cache default.
func WarmUp[T any](ctx context.Context, c *SmartCache[any], loader BulkLoaderFn[T], ttl time.Duration, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}

	seeds, err := loader(ctx)
	if err != nil {
		log.WarnContext(ctx, "cache warm-up failed", "error", err)
		return
	}
	for _, s := range seeds {
		c.SetWithTTL(s.Key, s.Data, ttl)
	}
}

// assertType narrows a stored any back to the caller's type. A nil interface
// maps to the zero value so that cached nil pointers and interfaces round-trip.
func assertType[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: have %T", ErrInvalidResultType, v)
	}
	return t, nil
}
