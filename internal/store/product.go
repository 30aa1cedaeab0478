package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BigSlendr/BBE-Menu/types"
)

const productColumns = `
	id, slug, name, brand, category, subcategory, description, effects_json,
	image_path, is_published, is_featured, created_at, updated_at`

const variantColumns = `
	id, product_id, label, price_cents, inventory_qty, low_stock_threshold,
	is_active, sort_order, created_at, updated_at`

// ProductRepository persists catalog products, their variants, and the
// inventory movement log.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func scanProduct(row interface{ Scan(...any) error }) (types.Product, error) {
	var product types.Product
	var effectsJSON string
	err := row.Scan(
		&product.ID,
		&product.Slug,
		&product.Name,
		&product.Brand,
		&product.Category,
		&product.Subcategory,
		&product.Description,
		&effectsJSON,
		&product.ImagePath,
		&product.IsPublished,
		&product.IsFeatured,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Product{}, ErrNotFound
		}
		return types.Product{}, err
	}
	if err := json.Unmarshal([]byte(effectsJSON), &product.Effects); err != nil {
		product.Effects = nil
	}
	return product, nil
}

func scanVariant(row interface{ Scan(...any) error }) (types.ProductVariant, error) {
	var variant types.ProductVariant
	err := row.Scan(
		&variant.ID,
		&variant.ProductID,
		&variant.Label,
		&variant.PriceCents,
		&variant.InventoryQty,
		&variant.LowStockThreshold,
		&variant.IsActive,
		&variant.SortOrder,
		&variant.CreatedAt,
		&variant.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ProductVariant{}, ErrNotFound
		}
		return types.ProductVariant{}, err
	}
	return variant, nil
}

// PublicFilter selects products for the storefront listing. Only
// published products are ever returned.
type PublicFilter struct {
	Category    string
	Subcategory string
	Brand       string
	Query       string
	Featured    bool
	Limit       int
}

// PublicList returns published products with their from-price and total
// active-variant inventory aggregates.
func (r *ProductRepository) PublicList(ctx context.Context, filter PublicFilter) ([]types.Product, error) {
	where := []string{"p.is_published = TRUE"}
	binds := make([]any, 0, 4)

	if filter.Category != "" && filter.Category != "all" {
		binds = append(binds, filter.Category)
		where = append(where, fmt.Sprintf("LOWER(p.category) = LOWER($%d)", len(binds)))
	}
	if filter.Subcategory != "" {
		binds = append(binds, filter.Subcategory)
		where = append(where, fmt.Sprintf("LOWER(p.subcategory) = LOWER($%d)", len(binds)))
	}
	if filter.Brand != "" {
		binds = append(binds, filter.Brand)
		where = append(where, fmt.Sprintf("LOWER(p.brand) = LOWER($%d)", len(binds)))
	}
	if filter.Query != "" {
		binds = append(binds, "%"+filter.Query+"%")
		n := len(binds)
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.brand ILIKE $%d OR p.description ILIKE $%d)", n, n, n))
	}
	if filter.Featured {
		where = append(where, "p.is_featured = TRUE")
	}
	binds = append(binds, filter.Limit)

	query := fmt.Sprintf(`
		SELECT %s,
			COUNT(v.id) FILTER (WHERE v.is_active),
			COALESCE(SUM(v.inventory_qty) FILTER (WHERE v.is_active), 0),
			MIN(v.price_cents) FILTER (WHERE v.is_active)
		FROM products p
		LEFT JOIN product_variants v ON v.product_id = p.id
		WHERE %s
		GROUP BY p.id
		ORDER BY p.is_featured DESC, p.updated_at DESC
		LIMIT $%d`, prefixColumns(productColumns, "p."), strings.Join(where, " AND "), len(binds))

	return r.listWithAggregates(ctx, query, binds...)
}

// AdminFilter selects products for the admin console listing.
type AdminFilter struct {
	Category  string
	Brand     string
	Query     string
	Published *bool
	Limit     int
}

func (r *ProductRepository) AdminList(ctx context.Context, filter AdminFilter) ([]types.Product, error) {
	where := []string{"TRUE"}
	binds := make([]any, 0, 4)

	if filter.Category != "" && filter.Category != "all" {
		binds = append(binds, filter.Category)
		where = append(where, fmt.Sprintf("LOWER(p.category) = LOWER($%d)", len(binds)))
	}
	if filter.Brand != "" {
		binds = append(binds, filter.Brand)
		where = append(where, fmt.Sprintf("LOWER(p.brand) = LOWER($%d)", len(binds)))
	}
	if filter.Query != "" {
		binds = append(binds, "%"+filter.Query+"%")
		n := len(binds)
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR p.brand ILIKE $%d OR p.slug ILIKE $%d)", n, n, n))
	}
	if filter.Published != nil {
		binds = append(binds, *filter.Published)
		where = append(where, fmt.Sprintf("p.is_published = $%d", len(binds)))
	}
	binds = append(binds, filter.Limit)

	query := fmt.Sprintf(`
		SELECT %s,
			COUNT(v.id) FILTER (WHERE v.is_active),
			COALESCE(SUM(v.inventory_qty) FILTER (WHERE v.is_active), 0),
			MIN(v.price_cents) FILTER (WHERE v.is_active)
		FROM products p
		LEFT JOIN product_variants v ON v.product_id = p.id
		WHERE %s
		GROUP BY p.id
		ORDER BY p.updated_at DESC
		LIMIT $%d`, prefixColumns(productColumns, "p."), strings.Join(where, " AND "), len(binds))

	return r.listWithAggregates(ctx, query, binds...)
}

func (r *ProductRepository) Get(ctx context.Context, id string) (types.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return types.Product{}, err
	}
	product.Variants, err = r.variantsFor(ctx, product.ID, false)
	return product, err
}

// GetBySlug returns a published product and its active variants.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (types.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1 AND is_published = TRUE`
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		return types.Product{}, err
	}
	product.Variants, err = r.variantsFor(ctx, product.ID, true)
	return product, err
}

func (r *ProductRepository) Create(ctx context.Context, product types.Product) error {
	const query = `
		INSERT INTO products (id, slug, name, brand, category, subcategory, description,
			effects_json, image_path, is_published, is_featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.ExecContext(ctx, query,
		product.ID,
		product.Slug,
		product.Name,
		product.Brand,
		product.Category,
		product.Subcategory,
		product.Description,
		effectsJSON(product.Effects),
		product.ImagePath,
		product.IsPublished,
		product.IsFeatured,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *ProductRepository) Update(ctx context.Context, product types.Product) error {
	const query = `
		UPDATE products
		SET slug = $1, name = $2, brand = $3, category = $4, subcategory = $5,
			description = $6, effects_json = $7, image_path = $8,
			is_published = $9, is_featured = $10, updated_at = $11
		WHERE id = $12`
	result, err := r.db.ExecContext(ctx, query,
		product.Slug,
		product.Name,
		product.Brand,
		product.Category,
		product.Subcategory,
		product.Description,
		effectsJSON(product.Effects),
		product.ImagePath,
		product.IsPublished,
		product.IsFeatured,
		time.Now(),
		product.ID,
	)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return err
	}
	return expectRow(result)
}

// IDForSlug resolves a slug to its product id regardless of publish
// state. Returns ErrNotFound when the slug is unused.
func (r *ProductRepository) IDForSlug(ctx context.Context, slug string) (string, error) {
	const query = `SELECT id FROM products WHERE slug = $1`
	var id string
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

func (r *ProductRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM products WHERE slug = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, slug).Scan(&exists)
	return exists, err
}

func (r *ProductRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, id).Scan(&exists)
	return exists, err
}

func (r *ProductRepository) GetVariant(ctx context.Context, id string) (types.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1`
	return scanVariant(r.db.QueryRowContext(ctx, query, id))
}

// GetVariantByLabel finds a product's variant by its display label, used
// by catalog imports to match rows across runs.
func (r *ProductRepository) GetVariantByLabel(ctx context.Context, productID, label string) (types.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE product_id = $1 AND label = $2`
	return scanVariant(r.db.QueryRowContext(ctx, query, productID, label))
}

func (r *ProductRepository) CreateVariant(ctx context.Context, variant types.ProductVariant) error {
	const query = `
		INSERT INTO product_variants (id, product_id, label, price_cents, inventory_qty,
			low_stock_threshold, is_active, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		variant.ID,
		variant.ProductID,
		variant.Label,
		variant.PriceCents,
		variant.InventoryQty,
		variant.LowStockThreshold,
		variant.IsActive,
		variant.SortOrder,
		variant.CreatedAt,
		variant.UpdatedAt,
	)
	return err
}

func (r *ProductRepository) UpdateVariant(ctx context.Context, variant types.ProductVariant) error {
	const query = `
		UPDATE product_variants
		SET label = $1, price_cents = $2, low_stock_threshold = $3,
			is_active = $4, sort_order = $5, updated_at = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query,
		variant.Label,
		variant.PriceCents,
		variant.LowStockThreshold,
		variant.IsActive,
		variant.SortOrder,
		time.Now(),
		variant.ID,
	)
	if err != nil {
		return err
	}
	return expectRow(result)
}

// DeactivateVariant soft-deletes a variant so historical carts keep a
// valid reference.
func (r *ProductRepository) DeactivateVariant(ctx context.Context, id string) error {
	const query = `UPDATE product_variants SET is_active = FALSE, updated_at = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}
	return expectRow(result)
}

// SetVariantInventory writes an absolute inventory count and records the
// delta in inventory_movements within one transaction.
func (r *ProductRepository) SetVariantInventory(ctx context.Context, movement types.InventoryMovement, newQty int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current int64
	const lockVariant = `SELECT inventory_qty FROM product_variants WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, lockVariant, movement.VariantID).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	now := time.Now()
	const updateVariant = `UPDATE product_variants SET inventory_qty = $1, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, updateVariant, newQty, now, movement.VariantID); err != nil {
		return err
	}

	const insertMovement = `
		INSERT INTO inventory_movements (id, variant_id, delta_qty, reason, created_at, created_by_admin_id)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, insertMovement,
		movement.ID, movement.VariantID, newQty-current, movement.Reason, now, movement.CreatedByAdminID,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ProductRepository) variantsFor(ctx context.Context, productID string, activeOnly bool) ([]types.ProductVariant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE product_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY sort_order ASC, price_cents ASC`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []types.ProductVariant
	for rows.Next() {
		variant, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		variants = append(variants, variant)
	}
	return variants, rows.Err()
}

func (r *ProductRepository) listWithAggregates(ctx context.Context, query string, args ...any) ([]types.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []types.Product
	for rows.Next() {
		var product types.Product
		var effects string
		if err := rows.Scan(
			&product.ID,
			&product.Slug,
			&product.Name,
			&product.Brand,
			&product.Category,
			&product.Subcategory,
			&product.Description,
			&effects,
			&product.ImagePath,
			&product.IsPublished,
			&product.IsFeatured,
			&product.CreatedAt,
			&product.UpdatedAt,
			&product.VariantCount,
			&product.TotalInventory,
			&product.FromPriceCents,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(effects), &product.Effects); err != nil {
			product.Effects = nil
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func effectsJSON(effects []string) string {
	if len(effects) == 0 {
		return "[]"
	}
	data, err := json.Marshal(effects)
	if err != nil {
		return "[]"
	}
	return string(data)
}
