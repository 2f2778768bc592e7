package cache

import (
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// Names of the domain caches pre-registered by NewManager. Their policies
// reflect the access patterns of each domain.
const (
	// ProductsCache is large with a long TTL and LFU eviction: popular
	// items should stick even when the catalog churns.
	ProductsCache = "products"
	// CustomersCache is medium-sized with LRU eviction, biased towards
	// recently active accounts.
	CustomersCache = "customers"
	// OrdersCache is small with a short TTL: orders change status fast and
	// stale reads are costly.
	OrdersCache = "orders"
	// SearchCache keeps popular queries around longest (long TTL, LFU).
	SearchCache = "search"
)

// Manager is a registry of named SmartCache instances so unrelated call
// sites share one cache per logical domain. It holds no global state; the
// process root constructs one and passes it down, and Shutdown tears every
// cache down with it.
//
// Creation is idempotent: the first Get for a name constructs the cache and
// every later call returns that same instance, ignoring any newly supplied
// config. A call site must not be able to reshape a cache other call sites
// already depend on; pick distinct names for distinct configs.
type Manager struct {
	caches *xsync.MapOf[string, *SmartCache[any]]
}

// NewManager builds a registry with the four domain caches pre-registered.
func NewManager() *Manager {
	m := &Manager{caches: xsync.NewMapOf[string, *SmartCache[any]]()}

	m.Get(ProductsCache, Config{MaxSize: 2000, DefaultTTL: 10 * time.Minute, Policy: EvictLFU})
	m.Get(CustomersCache, Config{MaxSize: 1000, DefaultTTL: 5 * time.Minute, Policy: EvictLRU})
	m.Get(OrdersCache, Config{MaxSize: 500, DefaultTTL: time.Minute, CleanupInterval: 30 * time.Second, Policy: EvictLRU})
	m.Get(SearchCache, Config{MaxSize: 500, DefaultTTL: 10 * time.Minute, Policy: EvictLFU})

	return m
}

// Get returns the named cache, constructing it on first use. An optional
// config applies only on that first call; unset fields are filled from
// DefaultConfig. Later calls return the existing instance unchanged.
func (m *Manager) Get(name string, cfg ...Config) *SmartCache[any] {
	c, _ := m.caches.LoadOrCompute(name, func() *SmartCache[any] {
		merged := DefaultConfig()
		if len(cfg) > 0 {
			merged = cfg[0].withDefaults()
		}
		cache, err := New[any](merged)
		if err != nil {
			// withDefaults guarantees a valid config; this is unreachable
			// unless Validate gains new rules.
			panic(err)
		}
		return cache
	})
	return c
}

// Destroy tears down the named cache and removes it from the registry,
// reporting whether it existed.
func (m *Manager) Destroy(name string) bool {
	c, ok := m.caches.LoadAndDelete(name)
	if !ok {
		return false
	}
	c.Destroy()
	return true
}

// AllStats returns a stats snapshot per registered cache.
func (m *Manager) AllStats() map[string]Stats {
	out := make(map[string]Stats, m.caches.Size())
	m.caches.Range(func(name string, c *SmartCache[any]) bool {
		out[name] = c.Stats()
		return true
	})
	return out
}

// ClearAll drops the entries of every registered cache without destroying
// the caches themselves. Cumulative counters survive.
func (m *Manager) ClearAll() {
	m.caches.Range(func(_ string, c *SmartCache[any]) bool {
		c.Clear()
		return true
	})
}

// Shutdown destroys every registered cache and empties the registry.
// The manager must not be used afterward.
func (m *Manager) Shutdown() {
	m.caches.Range(func(name string, c *SmartCache[any]) bool {
		m.caches.Delete(name)
		c.Destroy()
		return true
	})
}
