package cache

import "github.com/prometheus/client_golang/prometheus"

// Collector exposes the stats of every cache in a Manager as Prometheus
// metrics, labelled by cache name. Register it once per manager:
//
//	prometheus.MustRegister(cache.NewCollector(manager, ""))
//
// Counters are read from the same snapshots Stats returns, so scrapes never
// block cache operations beyond the per-cache mutex.
type Collector struct {
	manager *Manager

	hits      *prometheus.Desc
	misses    *prometheus.Desc
	sets      *prometheus.Desc
	deletes   *prometheus.Desc
	evictions *prometheus.Desc
	size      *prometheus.Desc
	hitRate   *prometheus.Desc
}

// NewCollector builds a collector over the given manager. An empty namespace
// defaults to "shopcache".
func NewCollector(manager *Manager, namespace string) *Collector {
	if namespace == "" {
		namespace = "shopcache"
	}
	labels := []string{"cache"}

	return &Collector{
		manager:   manager,
		hits:      prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "hits_total"), "Total cache hits.", labels, nil),
		misses:    prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "misses_total"), "Total cache misses.", labels, nil),
		sets:      prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "sets_total"), "Total cache writes.", labels, nil),
		deletes:   prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "deletes_total"), "Total explicit deletions.", labels, nil),
		evictions: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "evictions_total"), "Total evictions, expiry included.", labels, nil),
		size:      prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "entries"), "Current number of stored entries.", labels, nil),
		hitRate:   prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "hit_rate_percent"), "Hit rate percentage since cache creation.", labels, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.hits
	ch <- c.misses
	ch <- c.sets
	ch <- c.deletes
	ch <- c.evictions
	ch <- c.size
	ch <- c.hitRate
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for name, s := range c.manager.AllStats() {
		ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(s.Hits), name)
		ch <- prometheus.MustNewConstMetric(c.misses, prometheus.CounterValue, float64(s.Misses), name)
		ch <- prometheus.MustNewConstMetric(c.sets, prometheus.CounterValue, float64(s.Sets), name)
		ch <- prometheus.MustNewConstMetric(c.deletes, prometheus.CounterValue, float64(s.Deletes), name)
		ch <- prometheus.MustNewConstMetric(c.evictions, prometheus.CounterValue, float64(s.Evictions), name)
		ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(s.TotalSize), name)
		ch <- prometheus.MustNewConstMetric(c.hitRate, prometheus.GaugeValue, s.HitRate, name)
	}
}
