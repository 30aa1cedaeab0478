package handlers

import (
	"errors"
	"math"
	"net/http"

	"github.com/BigSlendr/BBE-Menu/internal/services"
	"github.com/BigSlendr/BBE-Menu/types"
	"github.com/go-chi/chi/v5"
)

// OrderHandler ingests checkout submissions.
type OrderHandler struct {
	orders *services.OrderService
}

func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// OrderRouter registers the checkout route. The caller mounts it behind
// RequireSession and RequireApproved.
func OrderRouter(r chi.Router, orders *services.OrderService) {
	handler := NewOrderHandler(orders)
	r.Post("/", handler.Create)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	input, err := req.normalize()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orders.Create(r.Context(), user, input)
	if err != nil {
		if errors.Is(err, services.ErrNotifySend) {
			// The order committed; only the staff email failed.
			writeError(w, http.StatusBadGateway, "order received but notification failed")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	writeJSON(w, http.StatusOK, CreateOrderResponse{
		OK:           true,
		ID:           order.ID,
		Reference:    order.Reference,
		PointsEarned: order.PointsEarned,
	})
}

// OrderCustomer is the contact block of a checkout submission.
type OrderCustomer struct {
	Name           string              `json:"name"`
	Phone          string              `json:"phone"`
	Email          string              `json:"email"`
	DeliveryMethod string              `json:"delivery_method"`
	Address        *types.OrderAddress `json:"address"`
}

// CreateOrderRequest accepts money either as integer cents or as decimal
// dollars; cents win when both are present.
type CreateOrderRequest struct {
	Cart          *types.Cart      `json:"cart"`
	CartItems     []types.CartItem `json:"cartItems"`
	Subtotal      *float64         `json:"subtotal"`
	SubtotalCents *int64           `json:"subtotal_cents"`
	Tax           *float64         `json:"tax"`
	TaxCents      *int64           `json:"tax_cents"`
	Total         *float64         `json:"total"`
	TotalCents    *int64           `json:"total_cents"`
	Reference     string           `json:"reference"`
	Customer      *OrderCustomer   `json:"customer" validate:"required"`
}

func (req CreateOrderRequest) normalize() (services.OrderInput, error) {
	var cart types.Cart
	switch {
	case req.Cart != nil && len(req.Cart.Items) > 0:
		cart = *req.Cart
	case len(req.CartItems) > 0:
		cart = types.Cart{Items: req.CartItems}
	default:
		return services.OrderInput{}, errors.New("cart is required")
	}

	subtotal, ok := normalizeCents(req.SubtotalCents, req.Subtotal)
	if !ok {
		return services.OrderInput{}, errors.New("subtotal is required")
	}
	total, ok := normalizeCents(req.TotalCents, req.Total)
	if !ok {
		return services.OrderInput{}, errors.New("total is required")
	}
	tax, _ := normalizeCents(req.TaxCents, req.Tax)

	customer := req.Customer
	if customer.Name == "" {
		return services.OrderInput{}, errors.New("customer.name is required")
	}
	if customer.Phone == "" {
		return services.OrderInput{}, errors.New("customer.phone is required")
	}
	if customer.DeliveryMethod != "pickup" && customer.DeliveryMethod != "delivery" {
		return services.OrderInput{}, errors.New("customer.delivery_method must be pickup or delivery")
	}

	return services.OrderInput{
		SubtotalCents:  subtotal,
		TaxCents:       tax,
		TotalCents:     total,
		CustomerName:   customer.Name,
		CustomerPhone:  customer.Phone,
		CustomerEmail:  customer.Email,
		DeliveryMethod: customer.DeliveryMethod,
		Address:        customer.Address,
		Cart:           cart,
		Reference:      req.Reference,
	}, nil
}

// normalizeCents prefers an explicit cents value, falling back to
// rounding decimal dollars.
func normalizeCents(cents *int64, dollars *float64) (int64, bool) {
	if cents != nil {
		return *cents, true
	}
	if dollars != nil && !math.IsNaN(*dollars) && !math.IsInf(*dollars, 0) {
		return int64(math.Round(*dollars * 100)), true
	}
	return 0, false
}

// CreateOrderResponse is returned by POST /orders.
type CreateOrderResponse struct {
	OK           bool   `json:"ok"`
	ID           string `json:"id"`
	Reference    string `json:"reference"`
	PointsEarned int64  `json:"points_earned"`
}
