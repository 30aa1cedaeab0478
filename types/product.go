package types

import "time"

// Product is a catalog entry. Pricing and inventory live on its variants.
type Product struct {
	ID          string   `json:"id" db:"id"`
	Slug        string   `json:"slug" db:"slug"`
	Name        string   `json:"name" db:"name"`
	Brand       string   `json:"brand" db:"brand"`
	Category    string   `json:"category" db:"category"`
	Subcategory *string  `json:"subcategory" db:"subcategory"`
	Description *string  `json:"description" db:"description"`
	Effects     []string `json:"effects" db:"-"`
	ImagePath   *string  `json:"image_path" db:"image_path"`
	IsPublished bool     `json:"is_published" db:"is_published"`
	IsFeatured  bool     `json:"is_featured" db:"is_featured"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Aggregates populated by list/detail queries, not stored columns.
	VariantCount   int              `json:"variant_count,omitempty" db:"-"`
	TotalInventory int64            `json:"total_inventory,omitempty" db:"-"`
	FromPriceCents *int64           `json:"from_price_cents,omitempty" db:"-"`
	Variants       []ProductVariant `json:"variants,omitempty" db:"-"`
}

// ProductVariant is a priced/sized option of a product with its own
// inventory count. Variants referenced by historical data are never
// physically removed; deletion flips IsActive off.
type ProductVariant struct {
	ID                string    `json:"id" db:"id"`
	ProductID         string    `json:"product_id" db:"product_id"`
	Label             string    `json:"label" db:"label"`
	PriceCents        int64     `json:"price_cents" db:"price_cents"`
	InventoryQty      int64     `json:"inventory_qty" db:"inventory_qty"`
	LowStockThreshold *int64    `json:"low_stock_threshold" db:"low_stock_threshold"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	SortOrder         int       `json:"sort_order" db:"sort_order"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// InventoryMovement records one stock change on a variant.
type InventoryMovement struct {
	ID               string    `json:"id" db:"id"`
	VariantID        string    `json:"variant_id" db:"variant_id"`
	DeltaQty         int64     `json:"delta_qty" db:"delta_qty"`
	Reason           *string   `json:"reason" db:"reason"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	CreatedByAdminID *string   `json:"created_by_admin_id" db:"created_by_admin_id"`
}
