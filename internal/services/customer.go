package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BigSlendr/BBE-Menu/internal/store"
	"github.com/BigSlendr/BBE-Menu/types"
	"github.com/google/uuid"
)

// AdminUserRepository is the user persistence surface the admin console
// uses beyond the auth slice.
type AdminUserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	Search(ctx context.Context, filter store.CustomerFilter) ([]types.User, error)
	UpdateProfile(ctx context.Context, id string, firstName, lastName, phone *string) error
	ListPendingReview(ctx context.Context) ([]types.User, error)
	SetAccountStatus(ctx context.Context, id, status string, adminID *string, reason *string) error
	SetTierOverride(ctx context.Context, id, tier string, reason, adminID *string) error
	ClearTierOverride(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string, reason *string) error
	Reactivate(ctx context.Context, id string) error
	Erase(ctx context.Context, id string, anonymize bool) error
	CountAll(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
	CountPendingReview(ctx context.Context) (int64, error)
}

// TagRepository defines persistence for admin-attached customer labels.
type TagRepository interface {
	List(ctx context.Context, userID string) ([]types.CustomerTag, error)
	Add(ctx context.Context, tag types.CustomerTag) error
	Remove(ctx context.Context, userID, tag string) error
}

// CustomerService encapsulates the admin console's customer management
// use-cases.
type CustomerService struct {
	users    AdminUserRepository
	tags     TagRepository
	ledger   LedgerRepository
	orders   OrderRepository
	sessions SessionRepository
}

func NewCustomerService(users AdminUserRepository, tags TagRepository, ledger LedgerRepository, orders OrderRepository, sessions SessionRepository) *CustomerService {
	return &CustomerService{
		users:    users,
		tags:     tags,
		ledger:   ledger,
		orders:   orders,
		sessions: sessions,
	}
}

func (s *CustomerService) Search(ctx context.Context, filter store.CustomerFilter) ([]types.User, error) {
	filter.Limit = clampLimit(filter.Limit)
	return s.users.Search(ctx, filter)
}

// CustomerDetail is the admin view of one customer: the account plus its
// tags, recent point movements, and recent orders.
type CustomerDetail struct {
	User   types.User          `json:"user"`
	Tags   []types.CustomerTag `json:"tags"`
	Ledger []types.LedgerEntry `json:"ledger"`
	Orders []types.Order       `json:"orders"`
}

func (s *CustomerService) Detail(ctx context.Context, userID string) (CustomerDetail, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return CustomerDetail{}, err
	}
	tags, err := s.tags.List(ctx, userID)
	if err != nil {
		return CustomerDetail{}, err
	}
	ledger, err := s.ledger.ListForUser(ctx, userID, 25)
	if err != nil {
		return CustomerDetail{}, err
	}
	orders, err := s.orders.ListForUser(ctx, userID, 20)
	if err != nil {
		return CustomerDetail{}, err
	}
	return CustomerDetail{User: user, Tags: tags, Ledger: ledger, Orders: orders}, nil
}

// UpdateProfile rewrites the customer's name and phone fields on the
// admin's behalf.
func (s *CustomerService) UpdateProfile(ctx context.Context, userID string, firstName, lastName, phone *string) (types.User, error) {
	if err := s.users.UpdateProfile(ctx, userID, firstName, lastName, phone); err != nil {
		return types.User{}, err
	}
	return s.users.GetByID(ctx, userID)
}

// PendingReview returns accounts awaiting an ID decision.
func (s *CustomerService) PendingReview(ctx context.Context) ([]types.User, error) {
	return s.users.ListPendingReview(ctx)
}

// AdjustPoints appends a manual ledger entry and returns the new
// balance. Delta may be negative; zero is rejected.
func (s *CustomerService) AdjustPoints(ctx context.Context, userID string, delta int64, reason string, adminID *string) (int64, error) {
	if delta == 0 {
		return 0, fmt.Errorf("delta must be non-zero")
	}
	var meta []byte
	if adminID != nil {
		meta = []byte(fmt.Sprintf(`{"admin_id":%q}`, *adminID))
	}
	return s.ledger.AdjustPoints(ctx, types.LedgerEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        types.LedgerTypeAdminAdjust,
		PointsDelta: delta,
		Reason:      reason,
		MetaJSON:    meta,
		CreatedAt:   time.Now(),
	})
}

// SetTier pins or clears a manual tier override. An empty tier clears
// the override, letting the computed tier show through again.
func (s *CustomerService) SetTier(ctx context.Context, userID, tier string, reason, adminID *string) (types.User, error) {
	if tier == "" {
		if err := s.users.ClearTierOverride(ctx, userID); err != nil {
			return types.User{}, err
		}
		return s.users.GetByID(ctx, userID)
	}
	if !ValidTier(tier) {
		return types.User{}, fmt.Errorf("unknown tier %q", tier)
	}
	if err := s.users.SetTierOverride(ctx, userID, tier, reason, adminID); err != nil {
		return types.User{}, err
	}
	return s.users.GetByID(ctx, userID)
}

// SetAccountStatus overrides the verification decision directly.
func (s *CustomerService) SetAccountStatus(ctx context.Context, userID, status string, adminID *string, reason *string) error {
	switch status {
	case "pending", "approved", "denied":
	default:
		return fmt.Errorf("unknown status %q", status)
	}
	return s.users.SetAccountStatus(ctx, userID, status, adminID, reason)
}

// Tags lists the labels attached to one customer.
func (s *CustomerService) Tags(ctx context.Context, userID string) ([]types.CustomerTag, error) {
	return s.tags.List(ctx, userID)
}

func (s *CustomerService) AddTag(ctx context.Context, userID, tag string, adminID *string) error {
	return s.tags.Add(ctx, types.CustomerTag{
		UserID:           userID,
		Tag:              tag,
		CreatedAt:        time.Now(),
		CreatedByAdminID: adminID,
	})
}

func (s *CustomerService) RemoveTag(ctx context.Context, userID, tag string) error {
	return s.tags.Remove(ctx, userID, tag)
}

// Deactivate locks the account out and revokes its open sessions.
func (s *CustomerService) Deactivate(ctx context.Context, userID string, reason *string) error {
	if err := s.users.Deactivate(ctx, userID, reason); err != nil {
		return err
	}
	return s.sessions.DeleteForUser(ctx, userID)
}

func (s *CustomerService) Reactivate(ctx context.Context, userID string) error {
	return s.users.Reactivate(ctx, userID)
}

// Erase deletes the account and its dependents after the admin confirms
// the exact email. With anonymize set, historical orders keep their
// totals but lose the contact snapshot.
func (s *CustomerService) Erase(ctx context.Context, userID, confirmEmail string, anonymize bool) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(strings.TrimSpace(confirmEmail), user.Email) {
		return fmt.Errorf("email confirmation does not match")
	}
	return s.users.Erase(ctx, userID, anonymize)
}

// DashboardMetrics is the admin landing-page summary.
type DashboardMetrics struct {
	TotalUsers          int64 `json:"totalUsers"`
	ActiveUsers         int64 `json:"activeUsers"`
	OrdersLast7Days     int64 `json:"ordersLast7Days"`
	PendingVerification int64 `json:"pendingVerification"`
}

func (s *CustomerService) Dashboard(ctx context.Context) (DashboardMetrics, error) {
	var metrics DashboardMetrics
	var err error

	if metrics.TotalUsers, err = s.users.CountAll(ctx); err != nil {
		return metrics, err
	}
	if metrics.ActiveUsers, err = s.users.CountActive(ctx); err != nil {
		return metrics, err
	}
	if metrics.OrdersLast7Days, err = s.orders.CountCreatedSince(ctx, time.Now().Add(-7*24*time.Hour)); err != nil {
		return metrics, err
	}
	if metrics.PendingVerification, err = s.users.CountPendingReview(ctx); err != nil {
		return metrics, err
	}
	return metrics, nil
}
