// Package cache implements the in-memory caching layer of the webshop.
//
// # Overview
//
// The package is built around four pieces:
//
//   - SmartCache: a generic bounded key-value store with per-entry TTL,
//     lazy plus background expiry, and a configurable eviction policy
//     (LRU, LFU, or nearest-expiry).
//   - Manager: a registry of named SmartCache instances, one per logical
//     domain (products, customers, orders, search), so unrelated call sites
//     share the same cache.
//   - GetWithCache / InvalidatePattern / WarmUp: cache-aside helpers that
//     sit between a cache and an arbitrary loader function.
//   - Monitor and Collector: stats aggregation into a health report and a
//     Prometheus collector.
//
// # Basic Usage
//
//	manager := cache.NewManager()
//	defer manager.Shutdown()
//
//	products := manager.Get(cache.ProductsCache)
//	p, err := cache.GetWithCache(ctx, products, "product::42", func(ctx context.Context) (*Product, error) {
//		return loadProductFromDB(ctx, "42")
//	})
//
// On a hit the loader never runs. On a miss the loader runs once even under
// concurrent callers: misses for the same key are coalesced with
// single-flight, and every waiter receives the one loaded value.
//
// # Failure Semantics
//
// Cache operations themselves are total; a missing key, an expired entry or
// a full cache are ordinary outcomes reported through return values. The
// only failure surface is the loader, whose error is propagated unmodified
// and never cached.
//
// # Lifecycle
//
// Every SmartCache owns a background goroutine sweeping expired entries.
// Destroy (or Manager.Shutdown) cancels it; a destroyed cache must not be
// reused. Never drop the last reference to a cache without destroying it.
//
// # Keys
//
// KeySerializer builds stable keys from a namespace plus arguments, joined
// with "::". Keys longer than 256 bytes collapse to the namespace plus an
// xxhash digest so the namespace prefix stays usable for substring-based
// invalidation.
package cache
