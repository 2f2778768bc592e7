package shopstore

import (
	"log/slog"

	"github.com/sellside/shopcache/cache"
)

// Invalidator removes the cached entries a write makes stale. Each method is
// the fan-out recipe for one entity type: the entity's own key plus every
// derived entry (lists, search results) that may embed it.
//
// Deleting a key that is not cached is a no-op, so recipes stay simple and
// over-invalidate rather than track exact membership.
type Invalidator struct {
	caches *cache.Manager
	keys   cache.KeySerializer
	log    *slog.Logger
}

// NewInvalidator builds an Invalidator over the given registry.
func NewInvalidator(caches *cache.Manager, keys cache.KeySerializer, log *slog.Logger) *Invalidator {
	if log == nil {
		log = slog.Default()
	}
	return &Invalidator{caches: caches, keys: keys, log: log}
}

// Product drops a product's entry together with every product list and every
// search result, since both may contain the changed product.
func (inv *Invalidator) Product(id string) {
	products := inv.caches.Get(cache.ProductsCache)
	products.Delete(inv.keys.SerializeKey("product", id))

	removed := cache.InvalidatePattern(products, "products"+cache.KeySeparator+"list")
	removed += cache.InvalidatePattern(inv.caches.Get(cache.SearchCache), "product")

	inv.log.Debug("invalidated product", "product_id", id, "derived_removed", removed)
}

// Customer drops a customer's entry and their cached order views, which
// denormalize customer data.
func (inv *Invalidator) Customer(id string) {
	inv.caches.Get(cache.CustomersCache).Delete(inv.keys.SerializeKey("customer", id))

	removed := cache.InvalidatePattern(inv.caches.Get(cache.OrdersCache), id)

	inv.log.Debug("invalidated customer", "customer_id", id, "derived_removed", removed)
}

// Order drops one order's entry and, when the owning customer is known, that
// customer's order list. An empty customerID skips the list fan-out.
func (inv *Invalidator) Order(orderID, customerID string) {
	orders := inv.caches.Get(cache.OrdersCache)
	orders.Delete(inv.keys.SerializeKey("order", orderID))

	removed := 0
	if customerID != "" {
		removed = cache.InvalidatePattern(orders, inv.keys.SerializeKey("orders", customerID))
	}

	inv.log.Debug("invalidated order", "order_id", orderID, "customer_id", customerID, "derived_removed", removed)
}

// All clears every registered cache. It is the blunt instrument for bulk
// imports and schema migrations.
func (inv *Invalidator) All() {
	inv.caches.ClearAll()
	inv.log.Info("invalidated all caches")
}
