package types

import "time"

// Order statuses. Status is mutated only by admin action; the cart and
// customer snapshots are immutable after submission.
const (
	OrderStatusPlaced    = "placed"
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Order is one row per checkout submission: a serialized cart snapshot,
// integer-cent totals, and a contact snapshot taken at submission time.
type Order struct {
	ID        string `json:"id" db:"id"`
	UserID    *string `json:"user_id" db:"user_id"`
	Status    string `json:"status" db:"status"`
	Reference string `json:"reference,omitempty" db:"reference"`

	SubtotalCents int64 `json:"subtotal_cents" db:"subtotal_cents"`
	TaxCents      int64 `json:"tax_cents" db:"tax_cents"`
	TotalCents    int64 `json:"total_cents" db:"total_cents"`

	// Contact/address snapshot. Nulled when the user is erased with
	// order anonymization; totals and ids survive.
	CustomerName   *string `json:"customer_name" db:"customer_name"`
	CustomerPhone  *string `json:"customer_phone" db:"customer_phone"`
	CustomerEmail  *string `json:"customer_email" db:"customer_email"`
	DeliveryMethod *string `json:"delivery_method" db:"delivery_method"`
	AddressJSON    []byte  `json:"address,omitempty" db:"address_json"`

	// CartJSON is the serialized cart exactly as submitted.
	CartJSON []byte `json:"cart,omitempty" db:"cart_json"`

	// PointsEarned is set when points are awarded for this order;
	// PointsAwardedAt is the idempotency key for the award path.
	PointsEarned    int64      `json:"points_earned" db:"points_earned"`
	PointsAwardedAt *time.Time `json:"points_awarded_at" db:"points_awarded_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CartItem is one line of a submitted cart.
type CartItem struct {
	ID      string  `json:"id,omitempty"`
	Name    string  `json:"name"`
	Qty     int     `json:"qty"`
	Price   float64 `json:"price"`
	Variant string  `json:"variant,omitempty"`
	Notes   string  `json:"notes,omitempty"`
}

// Cart is the snapshot persisted with an order.
type Cart struct {
	Items []CartItem `json:"items"`
}

// OrderAddress is the optional delivery address snapshot.
type OrderAddress struct {
	Line1 string `json:"line1,omitempty"`
	Line2 string `json:"line2,omitempty"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
	Zip   string `json:"zip,omitempty"`
}
