package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantRequestDefaultsToActive(t *testing.T) {
	var req VariantRequest
	require.NoError(t, json.Unmarshal([]byte(`{"label":"3.5g","price_cents":2999,"inventory_qty":12}`), &req))

	input := req.input()
	assert.True(t, input.IsActive, "omitted is_active reads as active")
	assert.Equal(t, int64(12), input.InventoryQty)

	req = VariantRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"label":"1g","price_cents":999,"is_active":false}`), &req))
	assert.False(t, req.input().IsActive)
}
