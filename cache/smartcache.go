package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// entry is the internal record for one cached value.
// An entry is expired once now - timestamp > ttl. Expired entries are
// logically absent even while still present in the map; they are purged
// lazily on access or by the background sweep, whichever comes first.
type entry[T any] struct {
	data         T
	timestamp    time.Time
	ttl          time.Duration
	accessCount  int64
	lastAccessed time.Time
}

func (e *entry[T]) expiredAt(now time.Time) bool {
	return now.Sub(e.timestamp) > e.ttl
}

// SmartCache is a bounded in-memory key-value store with per-entry TTL,
// access bookkeeping and a configurable eviction policy.
//
// All operations are total: missing keys, expired entries and a full cache
// are normal outcomes reported through return values, never errors.
//
// Ownership model: the cache owns a background cleanup goroutine that sweeps
// expired entries every Config.CleanupInterval. Call Destroy to stop it; the
// goroutine's lifetime is tied to the cache and never outlives it.
type SmartCache[T any] struct {
	mu      sync.Mutex
	cfg     Config
	entries map[string]*entry[T]

	hits      int64
	misses    int64
	sets      int64
	deletes   int64
	evictions int64

	// flight coalesces concurrent loads for the same key in GetWithCache,
	// so a cold key triggers exactly one loader call.
	flight singleflight.Group

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	destroyed bool
}

// New constructs a cache and starts its background cleanup sweep.
func New[T any](cfg Config) (*SmartCache[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &SmartCache[T]{
		cfg:     cfg,
		entries: make(map[string]*entry[T]),
		ctx:     ctx,
		cancel:  cancel,
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c, nil
}

// Config returns the immutable configuration the cache was built with.
func (c *SmartCache[T]) Config() Config {
	return c.cfg
}

// Get looks up key. A live entry counts a hit and refreshes the access
// bookkeeping. A missing key counts a miss. An expired entry is purged,
// counting both a miss and an eviction.
func (c *SmartCache[T]) Get(key string) (T, bool) {
	var zero T
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}
	if e.expiredAt(now) {
		delete(c.entries, key)
		c.misses++
		c.evictions++
		return zero, false
	}

	e.accessCount++
	e.lastAccessed = now
	c.hits++
	return e.data, true
}

// peek reports a live value without touching stats or access bookkeeping.
// Used by the single-flight path to re-check for a value stored while the
// caller was waiting on the flight lock.
func (c *SmartCache[T]) peek(key string) (T, bool) {
	var zero T
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.expiredAt(now) {
		return zero, false
	}
	return e.data, true
}

// Set stores value under key with the cache's default TTL.
func (c *SmartCache[T]) Set(key string, value T) {
	c.SetWithTTL(key, value, 0)
}

// SetWithTTL stores value under key. A ttl <= 0 falls back to the configured
// default. If the cache is at capacity and key is not already present, one
// entry is evicted per the configured policy before the insert; overwriting
// an existing key never forces an eviction since it does not grow the cache.
// Set always succeeds.
func (c *SmartCache[T]) SetWithTTL(key string, value T, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.cfg.DefaultTTL
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.cfg.MaxSize {
		c.evictOne()
	}

	c.entries[key] = &entry[T]{
		data:         value,
		timestamp:    now,
		ttl:          ttl,
		accessCount:  1,
		lastAccessed: now,
	}
	c.sets++
}

// Delete removes key if present and reports whether a removal occurred.
func (c *SmartCache[T]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	c.deletes++
	return true
}

// Has reports whether key holds a live entry. Unlike Get it does not count
// a hit or miss, but it does purge an expired entry it discovers.
func (c *SmartCache[T]) Has(key string) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}
	if e.expiredAt(now) {
		delete(c.entries, key)
		c.evictions++
		return false
	}
	return true
}

// Clear drops all entries. Cumulative counters are preserved.
func (c *SmartCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry[T])
}

// Stats returns a snapshot of the cache counters, not a live view.
func (c *SmartCache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Sets:      c.sets,
		Deletes:   c.deletes,
		Evictions: c.evictions,
		TotalSize: len(c.entries),
		HitRate:   computeHitRate(c.hits, c.misses),
	}
}

// Keys returns every currently stored key, including expired entries not yet
// purged. Callers must not assume liveness.
func (c *SmartCache[T]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.entries))
	for k := range c.entries {
		out = append(out, k)
	}
	return out
}

// Size returns the current entry count, stale-but-unpurged entries included.
func (c *SmartCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Destroy stops the background cleanup and drops all entries. The cache must
// not be used afterward. Destroy is safe to call more than once.
func (c *SmartCache[T]) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	c.entries = make(map[string]*entry[T])
	cancel := c.cancel
	c.mu.Unlock()

	cancel()
	c.wg.Wait()
}

// evictOne removes a single entry according to the configured policy.
// Callers must hold c.mu. Unknown policies remove whichever entry the map
// yields first. Ties go to the first entry encountered.
func (c *SmartCache[T]) evictOne() {
	if len(c.entries) == 0 {
		return
	}

	var victim string
	switch c.cfg.Policy {
	case EvictLRU:
		first := true
		var oldest time.Time
		for k, e := range c.entries {
			if first || e.lastAccessed.Before(oldest) {
				victim, oldest, first = k, e.lastAccessed, false
			}
		}
	case EvictLFU:
		first := true
		var fewest int64
		for k, e := range c.entries {
			if first || e.accessCount < fewest {
				victim, fewest, first = k, e.accessCount, false
			}
		}
	case EvictTTL:
		first := true
		var soonest time.Time
		for k, e := range c.entries {
			expiry := e.timestamp.Add(e.ttl)
			if first || expiry.Before(soonest) {
				victim, soonest, first = k, expiry, false
			}
		}
	default:
		for k := range c.entries {
			victim = k
			break
		}
	}

	delete(c.entries, victim)
	c.evictions++
}

func (c *SmartCache[T]) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.removeExpired(time.Now())
		}
	}
}

// removeExpired sweeps every expired entry, counting one eviction each.
// Lazy expiry on Get/Has and this sweep never double-count: whichever path
// discovers an expired entry removes it, so the other path never sees it.
func (c *SmartCache[T]) removeExpired(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if e.expiredAt(now) {
			delete(c.entries, k)
			c.evictions++
			removed++
		}
	}
	return removed
}
