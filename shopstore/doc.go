// Package shopstore is the webshop data layer built on top of the cache
// registry: bun-backed persistence for products, customers, and orders, with
// cache-aside reads and invalidation fan-out on writes.
//
// Reads go through cache.GetWithCache so concurrent misses coalesce into one
// database query. Writes go straight to the database and then invalidate the
// affected keys via Invalidator, whose per-entity recipes over-invalidate
// derived entries (lists, search results) rather than track exact membership.
//
// Keys follow one scheme, produced by cache.KeySerializer:
//
//	product::<id>
//	products::list::<limit>::<offset>
//	customer::<id>
//	order::<id>
//	orders::<customerID>
//	search::product::<query>
//
// The scheme is load-bearing: Invalidator matches on these substrings.
package shopstore
