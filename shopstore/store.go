package shopstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/sellside/shopcache/cache"
)

// Sentinel errors returned by Store operations. Callers match them with
// errors.Is.
var (
	ErrNotFound       = errors.New("shopstore: not found")
	ErrOutOfStock     = errors.New("shopstore: insufficient stock")
	ErrNotGiftBoxable = errors.New("shopstore: product cannot be gift boxed")
)

// Store is the shop's data access layer: bun-backed persistence with
// cache-aside reads and invalidation fan-out on every write.
type Store struct {
	db     *bun.DB
	caches *cache.Manager
	keys   cache.KeySerializer
	inv    *Invalidator
	log    *slog.Logger
}

// NewStore wires a Store over an open database and a cache registry.
func NewStore(db *bun.DB, caches *cache.Manager, keys cache.KeySerializer, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		db:     db,
		caches: caches,
		keys:   keys,
		inv:    NewInvalidator(caches, keys, log),
		log:    log,
	}
}

// Invalidator exposes the store's invalidation recipes for callers that
// mutate the database out of band.
func (s *Store) Invalidator() *Invalidator { return s.inv }

// GetProduct returns one product by ID, from cache when possible.
func (s *Store) GetProduct(ctx context.Context, id string) (*Product, error) {
	key := s.keys.SerializeKey("product", id)
	return cache.GetWithCache(ctx, s.caches.Get(cache.ProductsCache), key, func(ctx context.Context) (*Product, error) {
		p := new(Product)
		if err := s.db.NewSelect().Model(p).Where("p.id = ?", id).Scan(ctx); err != nil {
			return nil, mapNotFound(err, "product", id)
		}
		return p, nil
	})
}

// ListProducts returns one page of the catalog, newest first. Pages are
// cached per limit/offset pair.
func (s *Store) ListProducts(ctx context.Context, limit, offset int) ([]*Product, error) {
	if limit <= 0 {
		limit = 20
	}
	key := s.keys.SerializeKey("products", "list", limit, offset)
	return cache.GetWithCache(ctx, s.caches.Get(cache.ProductsCache), key, func(ctx context.Context) ([]*Product, error) {
		var out []*Product
		err := s.db.NewSelect().Model(&out).
			OrderExpr("p.created_at DESC").
			Limit(limit).Offset(offset).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		return out, nil
	})
}

// SearchProducts returns products whose title matches the query. Results are
// cached per normalized query string.
func (s *Store) SearchProducts(ctx context.Context, query string) ([]*Product, error) {
	key := s.keys.SerializeKey("search", "product", query)
	return cache.GetWithCache(ctx, s.caches.Get(cache.SearchCache), key, func(ctx context.Context) ([]*Product, error) {
		var out []*Product
		err := s.db.NewSelect().Model(&out).
			Where("lower(p.title) LIKE lower(?)", "%"+query+"%").
			OrderExpr("p.title ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("search products: %w", err)
		}
		return out, nil
	})
}

// CreateProduct validates and inserts a product, assigning an ID when none is
// set.
func (s *Store) CreateProduct(ctx context.Context, p *Product) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validate product: %w", err)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.db.NewInsert().Model(p).Exec(ctx); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	s.inv.Product(p.ID)
	return nil
}

// UpdateProduct validates and persists a product edit.
func (s *Store) UpdateProduct(ctx context.Context, p *Product) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validate product: %w", err)
	}
	p.UpdatedAt = time.Now()

	res, err := s.db.NewUpdate().Model(p).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update product %s: %w", p.ID, ErrNotFound)
	}
	s.inv.Product(p.ID)
	return nil
}

// DeleteProduct soft-deletes a product; it disappears from reads but stays in
// the table for order history.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*Product)(nil)).Where("p.id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete product %s: %w", id, ErrNotFound)
	}
	s.inv.Product(id)
	return nil
}

// GetCustomer returns one customer by ID, from cache when possible.
func (s *Store) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	key := s.keys.SerializeKey("customer", id)
	return cache.GetWithCache(ctx, s.caches.Get(cache.CustomersCache), key, func(ctx context.Context) (*Customer, error) {
		c := new(Customer)
		if err := s.db.NewSelect().Model(c).Where("c.id = ?", id).Scan(ctx); err != nil {
			return nil, mapNotFound(err, "customer", id)
		}
		return c, nil
	})
}

// CreateCustomer validates and inserts a customer account.
func (s *Store) CreateCustomer(ctx context.Context, c *Customer) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate customer: %w", err)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.db.NewInsert().Model(c).Exec(ctx); err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	s.inv.Customer(c.ID)
	return nil
}

// UpdateCustomer validates and persists a customer edit.
func (s *Store) UpdateCustomer(ctx context.Context, c *Customer) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("validate customer: %w", err)
	}
	c.UpdatedAt = time.Now()

	res, err := s.db.NewUpdate().Model(c).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update customer %s: %w", c.ID, ErrNotFound)
	}
	s.inv.Customer(c.ID)
	return nil
}

// GetOrder returns one order with its items, from cache when possible.
func (s *Store) GetOrder(ctx context.Context, id string) (*Order, error) {
	key := s.keys.SerializeKey("order", id)
	return cache.GetWithCache(ctx, s.caches.Get(cache.OrdersCache), key, func(ctx context.Context) (*Order, error) {
		o := new(Order)
		err := s.db.NewSelect().Model(o).
			Relation("Items").
			Where("o.id = ?", id).
			Scan(ctx)
		if err != nil {
			return nil, mapNotFound(err, "order", id)
		}
		return o, nil
	})
}

// ListOrdersByCustomer returns a customer's orders, newest first.
func (s *Store) ListOrdersByCustomer(ctx context.Context, customerID string) ([]*Order, error) {
	key := s.keys.SerializeKey("orders", customerID)
	return cache.GetWithCache(ctx, s.caches.Get(cache.OrdersCache), key, func(ctx context.Context) ([]*Order, error) {
		var out []*Order
		err := s.db.NewSelect().Model(&out).
			Relation("Items").
			Where("o.customer_id = ?", customerID).
			OrderExpr("o.created_at DESC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("list orders for %s: %w", customerID, err)
		}
		return out, nil
	})
}

// CreateOrder places an order: it captures current unit prices, checks stock
// and the gift-box option per product, decrements stock, and writes the order
// and its items in one transaction.
func (s *Store) CreateOrder(ctx context.Context, o *Order) error {
	if o.Status == "" {
		o.Status = OrderPending
	}
	if err := o.Validate(); err != nil {
		return fmt.Errorf("validate order: %w", err)
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}

	if _, err := s.GetCustomer(ctx, o.CustomerID); err != nil {
		return fmt.Errorf("order customer: %w", err)
	}

	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	o.TotalCents = 0

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, item := range o.Items {
			if err := item.Validate(); err != nil {
				return fmt.Errorf("validate item: %w", err)
			}

			p := new(Product)
			if err := tx.NewSelect().Model(p).Where("p.id = ?", item.ProductID).Scan(ctx); err != nil {
				return mapNotFound(err, "product", item.ProductID)
			}
			if p.Stock < item.Quantity {
				return fmt.Errorf("product %s: %w", p.ID, ErrOutOfStock)
			}
			if o.GiftBox && !p.GiftBoxable {
				return fmt.Errorf("product %s: %w", p.ID, ErrNotGiftBoxable)
			}

			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			item.OrderID = o.ID
			item.PriceCents = p.PriceCents
			o.TotalCents += p.PriceCents * int64(item.Quantity)

			res, err := tx.NewUpdate().Model((*Product)(nil)).
				Set("stock = stock - ?", item.Quantity).
				Where("p.id = ? AND p.stock >= ?", p.ID, item.Quantity).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("reserve stock: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("product %s: %w", p.ID, ErrOutOfStock)
			}
		}

		if _, err := tx.NewInsert().Model(o).Exec(ctx); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if _, err := tx.NewInsert().Model(&o.Items).Exec(ctx); err != nil {
			return fmt.Errorf("insert order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.inv.Order(o.ID, o.CustomerID)
	for _, item := range o.Items {
		s.inv.Product(item.ProductID)
	}
	return nil
}

// UpdateOrderStatus moves an order to a new lifecycle status.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	switch status {
	case OrderPending, OrderPaid, OrderShipped, OrderCancelled:
	default:
		return fmt.Errorf("unknown order status %q", status)
	}

	o := new(Order)
	if err := s.db.NewSelect().Model(o).Where("o.id = ?", orderID).Scan(ctx); err != nil {
		return mapNotFound(err, "order", orderID)
	}

	res, err := s.db.NewUpdate().Model((*Order)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("o.id = ?", orderID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update order %s: %w", orderID, ErrNotFound)
	}

	s.inv.Order(orderID, o.CustomerID)
	return nil
}

// WarmCatalog pre-loads the n newest products into the products cache so the
// first wave of traffic after a restart does not stampede the database.
// Failures are logged and swallowed inside cache.WarmUp.
func (s *Store) WarmCatalog(ctx context.Context, n int) {
	if n <= 0 {
		n = 100
	}
	loader := func(ctx context.Context) ([]cache.Seed[*Product], error) {
		var products []*Product
		err := s.db.NewSelect().Model(&products).
			OrderExpr("p.created_at DESC").
			Limit(n).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("warm catalog: %w", err)
		}
		seeds := make([]cache.Seed[*Product], 0, len(products))
		for _, p := range products {
			seeds = append(seeds, cache.Seed[*Product]{
				Key:  s.keys.SerializeKey("product", p.ID),
				Data: p,
			})
		}
		return seeds, nil
	}
	cache.WarmUp(ctx, s.caches.Get(cache.ProductsCache), loader, 0, s.log)
}

// mapNotFound turns sql.ErrNoRows into ErrNotFound, keeping other errors
// wrapped with context.
func mapNotFound(err error, entity, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
	}
	return fmt.Errorf("load %s %s: %w", entity, id, err)
}
