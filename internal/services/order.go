package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BigSlendr/BBE-Menu/internal/mail"
	"github.com/BigSlendr/BBE-Menu/internal/store"
	"github.com/BigSlendr/BBE-Menu/types"
	"github.com/google/uuid"
)

// ErrNotifySend wraps a staff-notification failure that happened after
// the order was already committed. Handlers map it to 502; the order
// itself stands.
var ErrNotifySend = errors.New("notification send failed")

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	CreateWithRewards(ctx context.Context, order types.Order, entry types.LedgerEntry, tierFor func(int64) string) error
	Get(ctx context.Context, id string) (types.Order, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]types.Order, error)
	Search(ctx context.Context, filter store.OrderFilter) ([]types.Order, error)
	UpdateStatus(ctx context.Context, id, status string) error
	AwardCompletionPoints(ctx context.Context, orderID, entryID string, calc func(int64) int64) (int64, bool, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// LedgerRepository defines read/adjust operations on the points ledger.
type LedgerRepository interface {
	ListForUser(ctx context.Context, userID string, limit int) ([]types.LedgerEntry, error)
	AdjustPoints(ctx context.Context, entry types.LedgerEntry) (int64, error)
}

// OrderService encapsulates checkout ingestion and order administration.
type OrderService struct {
	orders OrderRepository
	ledger LedgerRepository
	users  UserRepository
	mailer *mail.Mailer
	from   string
	to     string
}

func NewOrderService(orders OrderRepository, ledger LedgerRepository, users UserRepository, mailer *mail.Mailer, from, to string) *OrderService {
	return &OrderService{
		orders: orders,
		ledger: ledger,
		users:  users,
		mailer: mailer,
		from:   from,
		to:     to,
	}
}

// OrderInput is a normalized checkout submission. All money is in cents.
type OrderInput struct {
	SubtotalCents  int64
	TaxCents       int64
	TotalCents     int64
	CustomerName   string
	CustomerPhone  string
	CustomerEmail  string
	DeliveryMethod string
	Address        *types.OrderAddress
	Cart           types.Cart
	Reference      string
}

// Create ingests a checkout for an approved user: the order row, its
// "earn" ledger entry, and the balance/lifetime/tier update land in one
// transaction, then staff are notified by email. Points are awarded at
// creation; PointsAwardedAt doubles as the idempotency stamp for the
// completion path.
func (s *OrderService) Create(ctx context.Context, user types.User, input OrderInput) (types.Order, error) {
	now := time.Now()
	points := EarnPoints(input.SubtotalCents)

	cartJSON, err := json.Marshal(input.Cart)
	if err != nil {
		return types.Order{}, err
	}
	var addressJSON []byte
	if input.Address != nil {
		if addressJSON, err = json.Marshal(input.Address); err != nil {
			return types.Order{}, err
		}
	}

	reference := input.Reference
	if reference == "" {
		reference = newOrderReference(now)
	}

	order := types.Order{
		ID:              uuid.NewString(),
		UserID:          &user.ID,
		Status:          types.OrderStatusPlaced,
		Reference:       reference,
		SubtotalCents:   input.SubtotalCents,
		TaxCents:        input.TaxCents,
		TotalCents:      input.TotalCents,
		CustomerName:    &input.CustomerName,
		CustomerPhone:   &input.CustomerPhone,
		CustomerEmail:   &input.CustomerEmail,
		DeliveryMethod:  &input.DeliveryMethod,
		AddressJSON:     addressJSON,
		CartJSON:        cartJSON,
		PointsEarned:    points,
		PointsAwardedAt: &now,
		CreatedAt:       now,
	}

	entry := types.LedgerEntry{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		OrderID:     &order.ID,
		Type:        types.LedgerTypeEarn,
		PointsDelta: points,
		Reason:      "Order placed",
		CreatedAt:   now,
	}

	if err := s.orders.CreateWithRewards(ctx, order, entry, TierForSpend); err != nil {
		return types.Order{}, err
	}

	if err := s.notifyStaff(ctx, order, input.Cart); err != nil {
		return order, fmt.Errorf("%w: %v", ErrNotifySend, err)
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (types.Order, error) {
	return s.orders.Get(ctx, id)
}

func (s *OrderService) ListForUser(ctx context.Context, userID string, limit int) ([]types.Order, error) {
	return s.orders.ListForUser(ctx, userID, clampLimit(limit))
}

func (s *OrderService) Search(ctx context.Context, filter store.OrderFilter) ([]types.Order, error) {
	filter.Limit = clampLimit(filter.Limit)
	return s.orders.Search(ctx, filter)
}

// StatusResult reports the outcome of an admin status transition.
type StatusResult struct {
	PointsAwarded int64
	AwardSkipped  bool
}

// SetStatus applies an admin status transition. Completing an order also
// runs the award path; orders that already earned at creation are
// skipped via the PointsAwardedAt stamp, so no order earns twice.
func (s *OrderService) SetStatus(ctx context.Context, orderID, status string) (StatusResult, error) {
	switch status {
	case types.OrderStatusPlaced, types.OrderStatusPending, types.OrderStatusCompleted, types.OrderStatusCancelled:
	default:
		return StatusResult{}, fmt.Errorf("unknown status %q", status)
	}

	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return StatusResult{}, err
	}
	if status != types.OrderStatusCompleted {
		return StatusResult{}, nil
	}

	points, skipped, err := s.orders.AwardCompletionPoints(ctx, orderID, uuid.NewString(), EarnPoints)
	if err != nil {
		return StatusResult{}, err
	}
	return StatusResult{PointsAwarded: points, AwardSkipped: skipped}, nil
}

// LedgerForUser returns the user's most recent point movements.
func (s *OrderService) LedgerForUser(ctx context.Context, userID string, limit int) ([]types.LedgerEntry, error) {
	if limit <= 0 {
		limit = 25
	}
	return s.ledger.ListForUser(ctx, userID, limit)
}

func (s *OrderService) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return s.orders.CountCreatedSince(ctx, since)
}

func (s *OrderService) notifyStaff(ctx context.Context, order types.Order, cart types.Cart) error {
	if s.to == "" {
		return nil
	}
	lines := make([]mail.OrderLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, mail.OrderLine{
			Name:    item.Name,
			Variant: item.Variant,
			Qty:     item.Qty,
			Cents:   int64(item.Price*100 + 0.5),
		})
	}
	subject, body := mail.OrderNotification(order, lines)
	_, err := s.mailer.Send(ctx, mail.Message{
		From:    s.from,
		To:      []string{s.to},
		Subject: subject,
		HTML:    body,
	})
	return err
}

// newOrderReference builds the human-facing reference printed on staff
// emails, like ORD-20260115-4821.
func newOrderReference(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), uuid.NewString()[:4])
}
