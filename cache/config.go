package cache

import "time"

// EvictionPolicy selects which entry is removed when a full cache has to
// admit a new key.
type EvictionPolicy string

const (
	// EvictLRU removes the entry with the oldest last access.
	EvictLRU EvictionPolicy = "lru"
	// EvictLFU removes the entry with the smallest access count.
	EvictLFU EvictionPolicy = "lfu"
	// EvictTTL removes the entry closest to its expiry.
	EvictTTL EvictionPolicy = "ttl"
)

// Config holds the construction-time settings of a SmartCache.
// A cache never changes its config after New.
type Config struct {
	// MaxSize is the entry capacity. Must be greater than 0.
	MaxSize int

	// DefaultTTL applies to entries stored without an explicit TTL.
	// Must be greater than 0.
	DefaultTTL time.Duration

	// CleanupInterval sets the period of the background expiry sweep.
	// Must be greater than 0.
	CleanupInterval time.Duration

	// Policy picks the eviction strategy for a full cache. A value outside
	// the known set is not an error; eviction then removes an arbitrary
	// entry.
	Policy EvictionPolicy
}

// DefaultConfig returns the documented defaults used for caches created
// without an explicit config.
func DefaultConfig() Config {
	return Config{
		MaxSize:         1000,
		DefaultTTL:      5 * time.Minute,
		CleanupInterval: time.Minute,
		Policy:          EvictLRU,
	}
}

// Validate checks whether the configuration values are usable.
func (c Config) Validate() error {
	if c.MaxSize <= 0 {
		return &ConfigError{Field: "MaxSize", Message: "must be greater than 0"}
	}
	if c.DefaultTTL <= 0 {
		return &ConfigError{Field: "DefaultTTL", Message: "must be greater than 0"}
	}
	if c.CleanupInterval <= 0 {
		return &ConfigError{Field: "CleanupInterval", Message: "must be greater than 0"}
	}
	return nil
}

// withDefaults fills unset or non-positive fields from DefaultConfig.
// The result always passes Validate.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxSize <= 0 {
		c.MaxSize = d.MaxSize
	}
	if c.DefaultTTL <= 0 {
		c.DefaultTTL = d.DefaultTTL
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	if c.Policy == "" {
		c.Policy = d.Policy
	}
	return c
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
