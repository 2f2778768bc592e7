package cache

import (
	"fmt"
	"log/slog"
	"time"
)

// HealthStatus classifies aggregate cache behavior.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthWarning  HealthStatus = "warning"
	HealthCritical HealthStatus = "critical"
)

// CacheReport is the per-cache slice of a monitoring report.
type CacheReport struct {
	Stats           Stats    `json:"stats"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// Report aggregates hit/miss/size across every registered cache into an
// overall hit rate and a three-level health classification.
type Report struct {
	GeneratedAt    time.Time              `json:"generated_at"`
	Status         HealthStatus           `json:"status"`
	OverallHitRate float64                `json:"overall_hit_rate"`
	TotalHits      int64                  `json:"total_hits"`
	TotalMisses    int64                  `json:"total_misses"`
	TotalSize      int                    `json:"total_size"`
	Caches         map[string]CacheReport `json:"caches"`
}

// Monitor turns raw per-cache stats into an operability signal.
type Monitor struct {
	manager *Manager
	log     *slog.Logger
}

// NewMonitor builds a monitor over the given registry. A nil logger falls
// back to slog.Default.
func NewMonitor(manager *Manager, log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{manager: manager, log: log}
}

// GenerateReport snapshots every cache and classifies the aggregate:
// healthy at >= 60% overall hit rate, warning at 30-60%, critical below.
// Per-cache recommendations fire when an individual hit rate drops under
// 50% or evictions exceed 30% of sets.
func (m *Monitor) GenerateReport() Report {
	all := m.manager.AllStats()

	report := Report{
		GeneratedAt: time.Now(),
		Caches:      make(map[string]CacheReport, len(all)),
	}

	for name, s := range all {
		report.TotalHits += s.Hits
		report.TotalMisses += s.Misses
		report.TotalSize += s.TotalSize

		cr := CacheReport{Stats: s}
		if s.Hits+s.Misses > 0 && s.HitRate < 50 {
			cr.Recommendations = append(cr.Recommendations,
				fmt.Sprintf("%s hit rate is %.1f%%; consider longer TTLs or warming it up", name, s.HitRate))
		}
		if s.Sets > 0 && float64(s.Evictions) > 0.3*float64(s.Sets) {
			cr.Recommendations = append(cr.Recommendations,
				fmt.Sprintf("%s evicted %d entries against %d sets; consider raising its max size", name, s.Evictions, s.Sets))
		}
		report.Caches[name] = cr
	}

	report.OverallHitRate = computeHitRate(report.TotalHits, report.TotalMisses)
	switch {
	case report.OverallHitRate >= 60:
		report.Status = HealthHealthy
	case report.OverallHitRate >= 30:
		report.Status = HealthWarning
	default:
		report.Status = HealthCritical
	}

	return report
}

// LogMetrics emits the current report through the configured logger, one
// summary line plus a warning per recommendation.
func (m *Monitor) LogMetrics() {
	r := m.GenerateReport()

	m.log.Info("cache health",
		"status", string(r.Status),
		"overall_hit_rate", r.OverallHitRate,
		"total_hits", r.TotalHits,
		"total_misses", r.TotalMisses,
		"total_size", r.TotalSize,
	)

	for name, cr := range r.Caches {
		for _, rec := range cr.Recommendations {
			m.log.Warn("cache recommendation", "cache", name, "detail", rec)
		}
	}
}
