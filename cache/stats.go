package cache

// Stats is a point-in-time snapshot of a cache's running counters.
// Hits, misses, sets, deletes and evictions are cumulative over the cache's
// lifetime; Clear does not reset them. TotalSize is the current entry count
// and may include expired entries that have not been purged yet.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Sets      int64 `json:"sets"`
	Deletes   int64 `json:"deletes"`
	Evictions int64 `json:"evictions"`
	TotalSize int   `json:"total_size"`

	// HitRate is hits/(hits+misses) as a percentage, 0 when the cache has
	// seen no lookups.
	HitRate float64 `json:"hit_rate"`
}

func computeHitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}
