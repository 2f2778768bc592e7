package shopstore

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/uptrace/bun"
)

// Order lifecycle statuses.
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderShipped   = "shipped"
	OrderCancelled = "cancelled"
)

// Product is one catalog item. Prices are stored in cents to avoid float
// rounding in totals.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID          string    `bun:"id,pk" json:"id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description" json:"description"`
	PriceCents  int64     `bun:"price_cents,notnull" json:"price_cents"`
	Stock       int       `bun:"stock,notnull" json:"stock"`
	GiftBoxable bool      `bun:"gift_boxable" json:"gift_boxable"`
	CreatedAt   time.Time `bun:"created_at,nullzero" json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero" json:"updated_at"`
	DeletedAt   time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// Validate checks the fields a product needs before it can be stored.
func (p *Product) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Description, validation.Length(0, 2000)),
		validation.Field(&p.PriceCents, validation.Min(0)),
		validation.Field(&p.Stock, validation.Min(0)),
	)
}

// Customer is a shop account. Corporate accounts carry the billing details
// used for invoicing; those fields are required only when Corporate is set.
type Customer struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	ID             string    `bun:"id,pk" json:"id"`
	Name           string    `bun:"name,notnull" json:"name"`
	Email          string    `bun:"email,notnull" json:"email"`
	Corporate      bool      `bun:"corporate" json:"corporate"`
	CompanyName    string    `bun:"company_name" json:"company_name,omitempty"`
	VATNumber      string    `bun:"vat_number" json:"vat_number,omitempty"`
	BillingAddress string    `bun:"billing_address" json:"billing_address,omitempty"`
	CreatedAt      time.Time `bun:"created_at,nullzero" json:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero" json:"updated_at"`
	DeletedAt      time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// Validate checks the customer fields, including the corporate billing
// requirements.
func (c *Customer) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&c.Email, validation.Required, is.Email),
		validation.Field(&c.CompanyName, validation.When(c.Corporate, validation.Required)),
		validation.Field(&c.VATNumber, validation.When(c.Corporate, validation.Required)),
		validation.Field(&c.BillingAddress, validation.When(c.Corporate, validation.Required)),
	)
}

// Order is a customer purchase. TotalCents is derived from the items at
// creation time and never edited directly.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID          string       `bun:"id,pk" json:"id"`
	CustomerID  string       `bun:"customer_id,notnull" json:"customer_id"`
	Status      string       `bun:"status,notnull" json:"status"`
	GiftBox     bool         `bun:"gift_box" json:"gift_box"`
	GiftMessage string       `bun:"gift_message" json:"gift_message,omitempty"`
	TotalCents  int64        `bun:"total_cents,notnull" json:"total_cents"`
	Items       []*OrderItem `bun:"rel:has-many,join:id=order_id" json:"items,omitempty"`
	CreatedAt   time.Time    `bun:"created_at,nullzero" json:"created_at"`
	UpdatedAt   time.Time    `bun:"updated_at,nullzero" json:"updated_at"`
}

// Validate checks a new order: at least one item, a known status, and a gift
// message only on gift-boxed orders.
func (o *Order) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.CustomerID, validation.Required),
		validation.Field(&o.Status, validation.Required,
			validation.In(OrderPending, OrderPaid, OrderShipped, OrderCancelled)),
		validation.Field(&o.Items, validation.Required),
		validation.Field(&o.GiftMessage,
			validation.When(!o.GiftBox, validation.Empty),
			validation.Length(0, 500)),
	)
}

// OrderItem is one product line inside an order. PriceCents is the unit
// price captured at order time, so later catalog changes never rewrite
// history.
type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID         string `bun:"id,pk" json:"id"`
	OrderID    string `bun:"order_id,notnull" json:"order_id"`
	ProductID  string `bun:"product_id,notnull" json:"product_id"`
	Quantity   int    `bun:"quantity,notnull" json:"quantity"`
	PriceCents int64  `bun:"price_cents,notnull" json:"price_cents"`
}

// Validate checks one order line.
func (i *OrderItem) Validate() error {
	return validation.ValidateStruct(i,
		validation.Field(&i.ProductID, validation.Required),
		validation.Field(&i.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&i.PriceCents, validation.Min(int64(0))),
	)
}
