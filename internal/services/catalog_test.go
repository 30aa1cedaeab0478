package services

import (
	"context"
	"testing"

	"github.com/BigSlendr/BBE-Menu/internal/store"
	"github.com/BigSlendr/BBE-Menu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProductRepo keeps products and variants in memory, keyed the way
// the SQL layer keys them.
type fakeProductRepo struct {
	products map[string]types.Product        // by id
	variants map[string]types.ProductVariant // by id
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		products: map[string]types.Product{},
		variants: map[string]types.ProductVariant{},
	}
}

func (f *fakeProductRepo) PublicList(_ context.Context, _ store.PublicFilter) ([]types.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) AdminList(_ context.Context, _ store.AdminFilter) ([]types.Product, error) {
	return nil, nil
}

func (f *fakeProductRepo) Get(_ context.Context, id string) (types.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return types.Product{}, store.ErrNotFound
	}
	return product, nil
}

func (f *fakeProductRepo) GetBySlug(_ context.Context, slug string) (types.Product, error) {
	for _, product := range f.products {
		if product.Slug == slug && product.IsPublished {
			return product, nil
		}
	}
	return types.Product{}, store.ErrNotFound
}

func (f *fakeProductRepo) Create(_ context.Context, product types.Product) error {
	for _, existing := range f.products {
		if existing.Slug == product.Slug {
			return store.ErrConflict
		}
	}
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) Update(_ context.Context, product types.Product) error {
	if _, ok := f.products[product.ID]; !ok {
		return store.ErrNotFound
	}
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, product := range f.products {
		if product.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProductRepo) IDForSlug(_ context.Context, slug string) (string, error) {
	for id, product := range f.products {
		if product.Slug == slug {
			return id, nil
		}
	}
	return "", store.ErrNotFound
}

func (f *fakeProductRepo) GetVariant(_ context.Context, id string) (types.ProductVariant, error) {
	variant, ok := f.variants[id]
	if !ok {
		return types.ProductVariant{}, store.ErrNotFound
	}
	return variant, nil
}

func (f *fakeProductRepo) GetVariantByLabel(_ context.Context, productID, label string) (types.ProductVariant, error) {
	for _, variant := range f.variants {
		if variant.ProductID == productID && variant.Label == label {
			return variant, nil
		}
	}
	return types.ProductVariant{}, store.ErrNotFound
}

func (f *fakeProductRepo) CreateVariant(_ context.Context, variant types.ProductVariant) error {
	f.variants[variant.ID] = variant
	return nil
}

func (f *fakeProductRepo) UpdateVariant(_ context.Context, variant types.ProductVariant) error {
	if _, ok := f.variants[variant.ID]; !ok {
		return store.ErrNotFound
	}
	f.variants[variant.ID] = variant
	return nil
}

func (f *fakeProductRepo) DeactivateVariant(_ context.Context, id string) error {
	variant, ok := f.variants[id]
	if !ok {
		return store.ErrNotFound
	}
	variant.IsActive = false
	f.variants[id] = variant
	return nil
}

func (f *fakeProductRepo) SetVariantInventory(_ context.Context, movement types.InventoryMovement, newQty int64) error {
	variant, ok := f.variants[movement.VariantID]
	if !ok {
		return store.ErrNotFound
	}
	variant.InventoryQty = newQty
	f.variants[movement.VariantID] = variant
	return nil
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Purple Punch", "purple-punch"},
		{"  Gelato #33!  ", "gelato-33"},
		{"already-slugged", "already-slugged"},
		{"ÜBER", "ber"},
		{"---", "product"},
		{"", "product"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, slugify(tc.in), "input=%q", tc.in)
	}
}

func TestUniqueSlugSuffixes(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewCatalogService(repo)
	ctx := context.Background()

	first, err := svc.CreateProduct(ctx, ProductInput{Name: "Purple Punch"})
	require.NoError(t, err)
	assert.Equal(t, "purple-punch", first.Slug)

	second, err := svc.CreateProduct(ctx, ProductInput{Name: "Purple Punch"})
	require.NoError(t, err)
	assert.Equal(t, "purple-punch-2", second.Slug)

	third, err := svc.CreateProduct(ctx, ProductInput{Name: "Purple Punch"})
	require.NoError(t, err)
	assert.Equal(t, "purple-punch-3", third.Slug)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 50, clampLimit(0))
	assert.Equal(t, 50, clampLimit(-5))
	assert.Equal(t, 1, clampLimit(1))
	assert.Equal(t, 120, clampLimit(120))
	assert.Equal(t, 200, clampLimit(200))
	assert.Equal(t, 200, clampLimit(500))
}

func TestSizeLabel(t *testing.T) {
	assert.Equal(t, "3.5g", sizeLabel("g3_5"))
	assert.Equal(t, "7g", sizeLabel("g7"))
	assert.Equal(t, "14g", sizeLabel("g14"))
	assert.Equal(t, "28g", sizeLabel("g28"))
	assert.Equal(t, "56g", sizeLabel("g56"))
}

func TestSortedSizeKeys(t *testing.T) {
	keys := sortedSizeKeys(map[string]float64{
		"g28":  200,
		"g3_5": 30,
		"g14":  110,
		"g7":   60,
	})
	assert.Equal(t, []string{"g3_5", "g7", "g14", "g28"}, keys)

	keys = sortedSizeKeys(map[string]float64{"zz": 1, "aa": 2, "g7": 3})
	assert.Equal(t, []string{"g7", "aa", "zz"}, keys)
}

func TestNormalizeImagePath(t *testing.T) {
	assert.Equal(t, "/images/gelato.png", normalizeImagePath(`C:\assets\gelato.png`, "x"))
	assert.Equal(t, "/images/punch.webp", normalizeImagePath("img/punch.webp", "x"))
	assert.Equal(t, "/images/purple-punch.png", normalizeImagePath("", "purple-punch"))
	assert.Equal(t, "/images/purple-punch.png", normalizeImagePath("   ", "purple-punch"))
}

func TestImportContentInsertThenUpdate(t *testing.T) {
	repo := newFakeProductRepo()
	svc := NewCatalogService(repo)
	ctx := context.Background()

	items := []ContentProduct{
		{
			ID:      "purple-punch",
			Name:    "Purple Punch",
			Effects: []string{"relaxed"},
			Image:   `images\purple-punch.png`,
			Prices:  map[string]float64{"g3_5": 29.99, "g7": 55},
		},
		{ID: "", Name: "No Slug"},
	}

	summary := svc.ImportContent(ctx, items)
	assert.Equal(t, 1, summary.ProductsInserted)
	assert.Equal(t, 0, summary.ProductsUpdated)
	assert.Equal(t, 2, summary.VariantsInserted)
	assert.Equal(t, 0, summary.VariantsUpdated)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, summary.Errors)

	id, err := repo.IDForSlug(ctx, "purple-punch")
	require.NoError(t, err)
	product := repo.products[id]
	assert.Equal(t, "Bobby Black Exclusive", product.Brand)
	assert.Equal(t, "Flower", product.Category)
	assert.True(t, product.IsPublished)
	require.NotNil(t, product.ImagePath)
	assert.Equal(t, "/images/purple-punch.png", *product.ImagePath)

	eighth, err := repo.GetVariantByLabel(ctx, id, "3.5g")
	require.NoError(t, err)
	assert.Equal(t, int64(2999), eighth.PriceCents)
	assert.Equal(t, 0, eighth.SortOrder)

	// Re-running the same feed updates in place.
	items[0].Prices["g3_5"] = 27.5
	summary = svc.ImportContent(ctx, items[:1])
	assert.Equal(t, 0, summary.ProductsInserted)
	assert.Equal(t, 1, summary.ProductsUpdated)
	assert.Equal(t, 0, summary.VariantsInserted)
	assert.Equal(t, 2, summary.VariantsUpdated)

	eighth, err = repo.GetVariantByLabel(ctx, id, "3.5g")
	require.NoError(t, err)
	assert.Equal(t, int64(2750), eighth.PriceCents)
	assert.Len(t, repo.variants, 2, "no duplicate variants on re-import")
}

func TestCreateVariantCarriesInventory(t *testing.T) {
	repo := newFakeProductRepo()
	repo.products["p1"] = types.Product{ID: "p1", Name: "Gelato"}
	catalog := NewCatalogService(repo)

	variant, err := catalog.CreateVariant(context.Background(), "p1", VariantInput{
		Label:        "3.5g",
		PriceCents:   2999,
		InventoryQty: 40,
		IsActive:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(40), variant.InventoryQty)

	stored, err := repo.GetVariant(context.Background(), variant.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), stored.InventoryQty)
	assert.True(t, stored.IsActive)
}
