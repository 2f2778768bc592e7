// Package di wires the cache subsystem together for process roots. The
// container owns the singletons an application shares: the cache registry,
// the key serializer, the health monitor, and the metrics collector. Handing
// the container down replaces package-level globals; two containers never
// share state, which is what makes tests and multi-tenant embeddings cheap.
package di

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"

	"github.com/sellside/shopcache/cache"
	"github.com/sellside/shopcache/shopstore"
)

// Container holds the shared cache components for one application instance.
type Container struct {
	manager   *cache.Manager
	keys      cache.KeySerializer
	monitor   *cache.Monitor
	collector *cache.Collector
	log       *slog.Logger
}

// NewContainer builds a container around a fresh cache registry. A nil logger
// falls back to slog.Default.
func NewContainer(log *slog.Logger) *Container {
	if log == nil {
		log = slog.Default()
	}
	manager := cache.NewManager()
	return &Container{
		manager:   manager,
		keys:      cache.NewDefaultKeySerializer(),
		monitor:   cache.NewMonitor(manager, log),
		collector: cache.NewCollector(manager, ""),
		log:       log,
	}
}

// Manager returns the cache registry.
func (c *Container) Manager() *cache.Manager { return c.manager }

// KeySerializer returns the shared key serializer.
func (c *Container) KeySerializer() cache.KeySerializer { return c.keys }

// Monitor returns the health monitor over the registry.
func (c *Container) Monitor() *cache.Monitor { return c.monitor }

// Collector returns the prometheus collector for the registry. Register it
// once per process; registering the collectors of two containers on one
// registry collides on metric names.
func (c *Container) Collector() prometheus.Collector { return c.collector }

// NewStore builds a shopstore.Store over the given database, sharing the
// container's registry and serializer.
func (c *Container) NewStore(db *bun.DB) *shopstore.Store {
	return shopstore.NewStore(db, c.manager, c.keys, c.log)
}

// Shutdown destroys every cache in the registry. The container must not be
// used afterward.
func (c *Container) Shutdown() {
	c.manager.Shutdown()
}
