package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicListOrdersFeaturedThenNewest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewProductRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "slug", "name", "brand", "category", "subcategory", "description",
		"effects_json", "image_path", "is_published", "is_featured",
		"created_at", "updated_at", "variant_count", "total_inventory", "from_price_cents",
	}).AddRow(
		"p1", "gelato", "Gelato", "BBE", "flower", nil, nil,
		`["relaxed"]`, nil, true, true, now, now, 2, 40, 2999,
	)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY p.is_featured DESC, p.updated_at DESC`)).
		WithArgs(50).
		WillReturnRows(rows)

	products, err := repo.PublicList(context.Background(), PublicFilter{Limit: 50})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Gelato", products[0].Name)
	assert.Equal(t, []string{"relaxed"}, products[0].Effects)

	assert.NoError(t, mock.ExpectationsWereMet())
}
