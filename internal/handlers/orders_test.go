package handlers

import (
	"testing"

	"github.com/BigSlendr/BBE-Menu/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrF(v float64) *float64 { return &v }
func ptrI(v int64) *int64     { return &v }

func validOrderRequest() CreateOrderRequest {
	return CreateOrderRequest{
		Cart: &types.Cart{Items: []types.CartItem{
			{Name: "Gelato", Qty: 1, Price: 25.99},
		}},
		SubtotalCents: ptrI(2599),
		TaxCents:      ptrI(260),
		TotalCents:    ptrI(2859),
		Customer: &OrderCustomer{
			Name:           "Jo",
			Phone:          "555-0100",
			DeliveryMethod: "pickup",
		},
	}
}

func TestNormalizePrefersCentsOverDollars(t *testing.T) {
	req := validOrderRequest()
	req.Subtotal = ptrF(99.99) // ignored when cents present

	input, err := req.normalize()
	require.NoError(t, err)
	assert.Equal(t, int64(2599), input.SubtotalCents)
	assert.Equal(t, int64(260), input.TaxCents)
	assert.Equal(t, int64(2859), input.TotalCents)
}

func TestNormalizeRoundsDecimalDollars(t *testing.T) {
	req := validOrderRequest()
	req.SubtotalCents = nil
	req.TaxCents = nil
	req.TotalCents = nil
	req.Subtotal = ptrF(25.99)
	req.Tax = ptrF(2.60)
	req.Total = ptrF(28.59)

	input, err := req.normalize()
	require.NoError(t, err)
	assert.Equal(t, int64(2599), input.SubtotalCents)
	assert.Equal(t, int64(260), input.TaxCents)
	assert.Equal(t, int64(2859), input.TotalCents)
}

func TestNormalizeCartItemsFallback(t *testing.T) {
	req := validOrderRequest()
	req.Cart = nil
	req.CartItems = []types.CartItem{{Name: "Punch", Qty: 2, Price: 10}}

	input, err := req.normalize()
	require.NoError(t, err)
	require.Len(t, input.Cart.Items, 1)
	assert.Equal(t, "Punch", input.Cart.Items[0].Name)
}

func TestNormalizeMissingFields(t *testing.T) {
	req := validOrderRequest()
	req.Cart = nil
	_, err := req.normalize()
	assert.EqualError(t, err, "cart is required")

	req = validOrderRequest()
	req.SubtotalCents = nil
	_, err = req.normalize()
	assert.EqualError(t, err, "subtotal is required")

	req = validOrderRequest()
	req.TotalCents = nil
	_, err = req.normalize()
	assert.EqualError(t, err, "total is required")

	req = validOrderRequest()
	req.Customer.Name = ""
	_, err = req.normalize()
	assert.EqualError(t, err, "customer.name is required")

	req = validOrderRequest()
	req.Customer.Phone = ""
	_, err = req.normalize()
	assert.EqualError(t, err, "customer.phone is required")
}

func TestNormalizeDeliveryMethod(t *testing.T) {
	req := validOrderRequest()
	req.Customer.DeliveryMethod = "drone"
	_, err := req.normalize()
	assert.Error(t, err)

	req.Customer.DeliveryMethod = "delivery"
	req.Customer.Address = &types.OrderAddress{Line1: "1 Main St", City: "Portland", State: "OR", Zip: "97201"}
	input, err := req.normalize()
	require.NoError(t, err)
	assert.Equal(t, "delivery", input.DeliveryMethod)
	require.NotNil(t, input.Address)
	assert.Equal(t, "1 Main St", input.Address.Line1)
}

func TestNormalizeMissingTaxDefaultsToZero(t *testing.T) {
	req := validOrderRequest()
	req.TaxCents = nil
	input, err := req.normalize()
	require.NoError(t, err)
	assert.Zero(t, input.TaxCents)
}
