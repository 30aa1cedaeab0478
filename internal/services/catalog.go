package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/BigSlendr/BBE-Menu/internal/store"
	"github.com/BigSlendr/BBE-Menu/types"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ProductRepository defines persistence operations for the catalog.
type ProductRepository interface {
	PublicList(ctx context.Context, filter store.PublicFilter) ([]types.Product, error)
	AdminList(ctx context.Context, filter store.AdminFilter) ([]types.Product, error)
	Get(ctx context.Context, id string) (types.Product, error)
	GetBySlug(ctx context.Context, slug string) (types.Product, error)
	Create(ctx context.Context, product types.Product) error
	Update(ctx context.Context, product types.Product) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	IDForSlug(ctx context.Context, slug string) (string, error)
	GetVariant(ctx context.Context, id string) (types.ProductVariant, error)
	GetVariantByLabel(ctx context.Context, productID, label string) (types.ProductVariant, error)
	CreateVariant(ctx context.Context, variant types.ProductVariant) error
	UpdateVariant(ctx context.Context, variant types.ProductVariant) error
	DeactivateVariant(ctx context.Context, id string) error
	SetVariantInventory(ctx context.Context, movement types.InventoryMovement, newQty int64) error
}

// CatalogService encapsulates storefront browsing and catalog
// administration.
type CatalogService struct {
	products ProductRepository
}

func NewCatalogService(products ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) PublicList(ctx context.Context, filter store.PublicFilter) ([]types.Product, error) {
	filter.Limit = clampLimit(filter.Limit)
	return s.products.PublicList(ctx, filter)
}

func (s *CatalogService) GetBySlug(ctx context.Context, slug string) (types.Product, error) {
	return s.products.GetBySlug(ctx, slug)
}

func (s *CatalogService) AdminList(ctx context.Context, filter store.AdminFilter) ([]types.Product, error) {
	filter.Limit = clampLimit(filter.Limit)
	return s.products.AdminList(ctx, filter)
}

func (s *CatalogService) Get(ctx context.Context, id string) (types.Product, error) {
	return s.products.Get(ctx, id)
}

// ProductInput carries the validated admin product fields.
type ProductInput struct {
	Slug        string
	Name        string
	Brand       string
	Category    string
	Subcategory *string
	Description *string
	Effects     []string
	ImagePath   *string
	IsPublished bool
	IsFeatured  bool
}

// CreateProduct inserts a product. An empty slug is derived from the
// name; a taken slug gains a numeric suffix.
func (s *CatalogService) CreateProduct(ctx context.Context, input ProductInput) (types.Product, error) {
	desired := input.Slug
	if desired == "" {
		desired = input.Name
	}
	slug, err := s.uniqueSlug(ctx, desired)
	if err != nil {
		return types.Product{}, err
	}

	now := time.Now()
	product := types.Product{
		ID:          uuid.NewString(),
		Slug:        slug,
		Name:        input.Name,
		Brand:       input.Brand,
		Category:    input.Category,
		Subcategory: input.Subcategory,
		Description: input.Description,
		Effects:     input.Effects,
		ImagePath:   input.ImagePath,
		IsPublished: input.IsPublished,
		IsFeatured:  input.IsFeatured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return types.Product{}, err
	}
	return product, nil
}

// UpdateProduct rewrites a product's fields. Changing the slug to one
// another product holds surfaces store.ErrConflict.
func (s *CatalogService) UpdateProduct(ctx context.Context, id string, input ProductInput) (types.Product, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return types.Product{}, err
	}

	product.Slug = slugify(input.Slug)
	product.Name = input.Name
	product.Brand = input.Brand
	product.Category = input.Category
	product.Subcategory = input.Subcategory
	product.Description = input.Description
	product.Effects = input.Effects
	product.ImagePath = input.ImagePath
	product.IsPublished = input.IsPublished
	product.IsFeatured = input.IsFeatured

	if err := s.products.Update(ctx, product); err != nil {
		return types.Product{}, err
	}
	return s.products.Get(ctx, id)
}

// VariantInput carries the validated variant fields. InventoryQty only
// applies on create; updates go through SetInventory.
type VariantInput struct {
	Label             string
	PriceCents        int64
	InventoryQty      int64
	LowStockThreshold *int64
	IsActive          bool
	SortOrder         int
}

func (s *CatalogService) CreateVariant(ctx context.Context, productID string, input VariantInput) (types.ProductVariant, error) {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return types.ProductVariant{}, err
	}
	now := time.Now()
	variant := types.ProductVariant{
		ID:                uuid.NewString(),
		ProductID:         productID,
		Label:             input.Label,
		PriceCents:        input.PriceCents,
		InventoryQty:      input.InventoryQty,
		LowStockThreshold: input.LowStockThreshold,
		IsActive:          input.IsActive,
		SortOrder:         input.SortOrder,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.products.CreateVariant(ctx, variant); err != nil {
		return types.ProductVariant{}, err
	}
	return variant, nil
}

func (s *CatalogService) UpdateVariant(ctx context.Context, id string, input VariantInput) (types.ProductVariant, error) {
	variant, err := s.products.GetVariant(ctx, id)
	if err != nil {
		return types.ProductVariant{}, err
	}
	variant.Label = input.Label
	variant.PriceCents = input.PriceCents
	variant.LowStockThreshold = input.LowStockThreshold
	variant.IsActive = input.IsActive
	variant.SortOrder = input.SortOrder
	if err := s.products.UpdateVariant(ctx, variant); err != nil {
		return types.ProductVariant{}, err
	}
	return s.products.GetVariant(ctx, id)
}

// RemoveVariant soft-deletes so historical carts keep their reference.
func (s *CatalogService) RemoveVariant(ctx context.Context, id string) error {
	return s.products.DeactivateVariant(ctx, id)
}

// SetInventory writes a stock count and logs the movement. Mode "set"
// takes qty as the absolute count; "adjust" applies it as a signed delta
// to the current count. The result never goes below zero.
func (s *CatalogService) SetInventory(ctx context.Context, variantID, mode string, qty int64, reason, adminID *string) (types.ProductVariant, error) {
	var newQty int64
	switch mode {
	case "set":
		newQty = qty
	case "adjust":
		variant, err := s.products.GetVariant(ctx, variantID)
		if err != nil {
			return types.ProductVariant{}, err
		}
		newQty = variant.InventoryQty + qty
	default:
		return types.ProductVariant{}, fmt.Errorf("unknown inventory mode %q", mode)
	}
	if newQty < 0 {
		newQty = 0
	}

	movement := types.InventoryMovement{
		ID:               uuid.NewString(),
		VariantID:        variantID,
		Reason:           reason,
		CreatedByAdminID: adminID,
	}
	if err := s.products.SetVariantInventory(ctx, movement, newQty); err != nil {
		return types.ProductVariant{}, err
	}
	return s.products.GetVariant(ctx, variantID)
}

// ContentProduct is one item of the static content catalog consumed by
// ImportContent. Prices is keyed by size code (g3_5, g7, g14, g28) in
// dollars.
type ContentProduct struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Brand       string             `json:"brand"`
	Category    string             `json:"category"`
	Subcategory string             `json:"subcategory"`
	Description string             `json:"description"`
	Effects     []string           `json:"effects"`
	Image       string             `json:"image"`
	Prices      map[string]float64 `json:"prices"`
}

// ImportSummary reports what an ImportContent run touched.
type ImportSummary struct {
	ProductsInserted int           `json:"productsInserted"`
	ProductsUpdated  int           `json:"productsUpdated"`
	VariantsInserted int           `json:"variantsInserted"`
	VariantsUpdated  int           `json:"variantsUpdated"`
	Skipped          int           `json:"skipped"`
	Errors           []ImportError `json:"errors"`
}

// ImportError records one item that failed during import.
type ImportError struct {
	ProductID string `json:"productId,omitempty"`
	Message   string `json:"message"`
}

var sizeOrder = []string{"g3_5", "g7", "g14", "g28"}

var sizeLabels = map[string]string{
	"g3_5": "3.5g",
	"g7":   "7g",
	"g14":  "14g",
	"g28":  "28g",
}

// ImportContent upserts products and price variants from the static
// content catalog. Items are keyed by slug; variants are keyed by size
// label within a product. Imported variants keep their inventory.
func (s *CatalogService) ImportContent(ctx context.Context, items []ContentProduct) ImportSummary {
	summary := ImportSummary{Errors: []ImportError{}}

	for _, item := range items {
		slug := strings.TrimSpace(item.ID)
		name := strings.TrimSpace(item.Name)
		if slug == "" || name == "" {
			summary.Skipped++
			continue
		}
		if err := s.importOne(ctx, slug, name, item, &summary); err != nil {
			summary.Errors = append(summary.Errors, ImportError{ProductID: slug, Message: err.Error()})
		}
	}
	return summary
}

func (s *CatalogService) importOne(ctx context.Context, slug, name string, item ContentProduct, summary *ImportSummary) error {
	brand := item.Brand
	if brand == "" {
		brand = "Bobby Black Exclusive"
	}
	category := item.Category
	if category == "" {
		category = "Flower"
	}
	now := time.Now()

	productID, err := s.products.IDForSlug(ctx, slug)
	switch {
	case err == nil:
		product, getErr := s.products.Get(ctx, productID)
		if getErr != nil {
			return getErr
		}
		product.Name = name
		product.Brand = brand
		product.Category = category
		product.Subcategory = optional(item.Subcategory)
		product.Description = optional(item.Description)
		product.Effects = item.Effects
		product.ImagePath = optional(normalizeImagePath(item.Image, slug))
		product.IsPublished = true
		if updateErr := s.products.Update(ctx, product); updateErr != nil {
			return updateErr
		}
		summary.ProductsUpdated++
	case errors.Is(err, store.ErrNotFound):
		productID = uuid.NewString()
		if createErr := s.products.Create(ctx, types.Product{
			ID:          productID,
			Slug:        slug,
			Name:        name,
			Brand:       brand,
			Category:    category,
			Subcategory: optional(item.Subcategory),
			Description: optional(item.Description),
			Effects:     item.Effects,
			ImagePath:   optional(normalizeImagePath(item.Image, slug)),
			IsPublished: true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}); createErr != nil {
			return createErr
		}
		summary.ProductsInserted++
	default:
		return err
	}

	for index, key := range sortedSizeKeys(item.Prices) {
		dollars := item.Prices[key]
		if dollars < 0 {
			summary.Skipped++
			continue
		}
		label := sizeLabel(key)
		priceCents := int64(dollars*100 + 0.5)

		variant, err := s.products.GetVariantByLabel(ctx, productID, label)
		switch {
		case err == nil:
			variant.PriceCents = priceCents
			variant.IsActive = true
			variant.SortOrder = index
			if err := s.products.UpdateVariant(ctx, variant); err != nil {
				return err
			}
			summary.VariantsUpdated++
		case errors.Is(err, store.ErrNotFound):
			if err := s.products.CreateVariant(ctx, types.ProductVariant{
				ID:         uuid.NewString(),
				ProductID:  productID,
				Label:      label,
				PriceCents: priceCents,
				IsActive:   true,
				SortOrder:  index,
				CreatedAt:  now,
				UpdatedAt:  now,
			}); err != nil {
				return err
			}
			summary.VariantsInserted++
		default:
			return err
		}
	}
	return nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases and collapses non-alphanumerics to single hyphens.
func slugify(input string) string {
	slug := strings.ToLower(strings.TrimSpace(input))
	slug = slugPattern.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "product"
	}
	return slug
}

// uniqueSlug appends -2, -3, ... until the slug is free.
func (s *CatalogService) uniqueSlug(ctx context.Context, desired string) (string, error) {
	base := slugify(desired)
	slug := base
	for n := 2; ; n++ {
		taken, err := s.products.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
}

func sizeLabel(key string) string {
	if label, ok := sizeLabels[key]; ok {
		return label
	}
	return strings.TrimPrefix(key, "g") + "g"
}

func sortedSizeKeys(prices map[string]float64) []string {
	keys := make([]string, 0, len(prices))
	for key := range prices {
		keys = append(keys, key)
	}
	rank := func(key string) int {
		for i, known := range sizeOrder {
			if key == known {
				return i
			}
		}
		return len(sizeOrder) + 1
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func normalizeImagePath(image, slug string) string {
	raw := strings.ReplaceAll(strings.TrimSpace(image), `\`, "/")
	if raw != "" {
		if name := path.Base(raw); name != "." && name != "/" {
			return "/images/" + name
		}
	}
	return "/images/" + slug + ".png"
}

func optional(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

// clampLimit bounds a requested page size to [1, 200], defaulting to 50.
func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
