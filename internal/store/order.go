package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BigSlendr/BBE-Menu/types"
)

const orderColumns = `
	id, user_id, status, reference, subtotal_cents, tax_cents, total_cents,
	customer_name, customer_phone, customer_email, delivery_method,
	address_json, cart_json, points_earned, points_awarded_at, created_at`

// OrderRepository handles persistence for orders and the rewards writes
// that must land together with them.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func scanOrder(row interface{ Scan(...any) error }) (types.Order, error) {
	var order types.Order
	var addressJSON, cartJSON sql.NullString
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.Reference,
		&order.SubtotalCents,
		&order.TaxCents,
		&order.TotalCents,
		&order.CustomerName,
		&order.CustomerPhone,
		&order.CustomerEmail,
		&order.DeliveryMethod,
		&addressJSON,
		&cartJSON,
		&order.PointsEarned,
		&order.PointsAwardedAt,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Order{}, ErrNotFound
		}
		return types.Order{}, err
	}
	if addressJSON.Valid {
		order.AddressJSON = []byte(addressJSON.String)
	}
	if cartJSON.Valid {
		order.CartJSON = []byte(cartJSON.String)
	}
	return order, nil
}

// CreateWithRewards inserts the order, appends its "earn" ledger entry,
// and applies the user's balance/lifetime-spend/tier update as a single
// transaction. The ledger-equals-balance invariant holds because either
// all three writes commit or none do. tierFor maps the user's new
// lifetime spend to a computed tier.
func (r *OrderRepository) CreateWithRewards(
	ctx context.Context,
	order types.Order,
	entry types.LedgerEntry,
	tierFor func(lifetimeSpendCents int64) string,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const insertOrder = `
		INSERT INTO orders (id, user_id, status, reference, subtotal_cents, tax_cents, total_cents,
			customer_name, customer_phone, customer_email, delivery_method,
			address_json, cart_json, points_earned, points_awarded_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	if _, err := tx.ExecContext(ctx, insertOrder,
		order.ID,
		order.UserID,
		order.Status,
		order.Reference,
		order.SubtotalCents,
		order.TaxCents,
		order.TotalCents,
		order.CustomerName,
		order.CustomerPhone,
		order.CustomerEmail,
		order.DeliveryMethod,
		nullableJSON(order.AddressJSON),
		nullableJSON(order.CartJSON),
		order.PointsEarned,
		order.PointsAwardedAt,
		order.CreatedAt,
	); err != nil {
		return err
	}

	if err := insertLedgerEntry(ctx, tx, entry); err != nil {
		return err
	}

	var lifetime int64
	const lockUser = `SELECT lifetime_spend_cents FROM users WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, lockUser, entry.UserID).Scan(&lifetime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	newLifetime := lifetime + order.SubtotalCents
	const updateUser = `
		UPDATE users
		SET points_balance = points_balance + $1,
			lifetime_spend_cents = $2,
			tier = $3,
			updated_at = $4
		WHERE id = $5`
	if _, err := tx.ExecContext(ctx, updateUser,
		entry.PointsDelta, newLifetime, tierFor(newLifetime), time.Now(), entry.UserID,
	); err != nil {
		return err
	}

	return tx.Commit()
}

// AwardCompletionPoints awards points for an already-completed order that
// has not been awarded yet. The points_awarded_at stamp is the
// idempotency key: a second call finds it set and skips without writing.
func (r *OrderRepository) AwardCompletionPoints(
	ctx context.Context,
	orderID string,
	entryID string,
	calc func(subtotalCents int64) int64,
) (int64, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	var userID sql.NullString
	var status string
	var subtotal int64
	var awardedAt *time.Time
	const lockOrder = `
		SELECT user_id, status, subtotal_cents, points_awarded_at
		FROM orders
		WHERE id = $1
		FOR UPDATE`
	if err := tx.QueryRowContext(ctx, lockOrder, orderID).Scan(&userID, &status, &subtotal, &awardedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, ErrNotFound
		}
		return 0, false, err
	}

	if status != types.OrderStatusCompleted {
		return 0, false, fmt.Errorf("order %s is not completed", orderID)
	}
	if awardedAt != nil {
		return 0, true, nil
	}
	if !userID.Valid {
		// Detached (erased-user) orders have nobody to credit.
		return 0, true, nil
	}

	points := calc(subtotal)
	now := time.Now()

	const stampOrder = `
		UPDATE orders
		SET points_earned = $1, points_awarded_at = $2
		WHERE id = $3 AND points_awarded_at IS NULL`
	if _, err := tx.ExecContext(ctx, stampOrder, points, now, orderID); err != nil {
		return 0, false, err
	}

	if err := insertLedgerEntry(ctx, tx, types.LedgerEntry{
		ID:          entryID,
		UserID:      userID.String,
		OrderID:     &orderID,
		Type:        types.LedgerTypeEarn,
		PointsDelta: points,
		Reason:      "Order completed",
		CreatedAt:   now,
	}); err != nil {
		return 0, false, err
	}

	const creditUser = `
		UPDATE users
		SET points_balance = points_balance + $1, updated_at = $2
		WHERE id = $3`
	if _, err := tx.ExecContext(ctx, creditUser, points, now, userID.String); err != nil {
		return 0, false, err
	}

	return points, false, tx.Commit()
}

func (r *OrderRepository) Get(ctx context.Context, id string) (types.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return scanOrder(r.db.QueryRowContext(ctx, query, id))
}

func (r *OrderRepository) ListForUser(ctx context.Context, userID string, limit int) ([]types.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	return r.list(ctx, query, userID, limit)
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `UPDATE orders SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return expectRow(result)
}

// OrderFilter selects orders for the admin listing.
type OrderFilter struct {
	Query    string
	Status   string
	DateFrom string
	DateTo   string
	Limit    int
}

func (r *OrderRepository) Search(ctx context.Context, filter OrderFilter) ([]types.Order, error) {
	where := make([]string, 0, 4)
	binds := make([]any, 0, 6)

	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		binds = append(binds, like)
		n := len(binds)
		where = append(where, fmt.Sprintf(
			"(id ILIKE $%d OR customer_email ILIKE $%d OR customer_phone ILIKE $%d OR customer_name ILIKE $%d)",
			n, n, n, n))
	}
	if filter.Status != "" && filter.Status != "all" {
		binds = append(binds, filter.Status)
		where = append(where, fmt.Sprintf("LOWER(status) = $%d", len(binds)))
	}
	if filter.DateFrom != "" {
		binds = append(binds, filter.DateFrom)
		where = append(where, fmt.Sprintf("created_at >= $%d::timestamptz", len(binds)))
	}
	if filter.DateTo != "" {
		binds = append(binds, filter.DateTo)
		where = append(where, fmt.Sprintf("created_at <= $%d::timestamptz", len(binds)))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}
	binds = append(binds, filter.Limit)

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		%s
		ORDER BY created_at DESC
		LIMIT $%d`, orderColumns, whereSQL, len(binds))

	return r.list(ctx, query, binds...)
}

func (r *OrderRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	const query = `SELECT COUNT(*) FROM orders WHERE created_at >= $1`
	var total int64
	if err := r.db.QueryRowContext(ctx, query, since).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]types.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []types.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func insertLedgerEntry(ctx context.Context, tx *sql.Tx, entry types.LedgerEntry) error {
	const query = `
		INSERT INTO points_ledger (id, user_id, order_id, type, points_delta, reason, meta_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := tx.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.OrderID,
		entry.Type,
		entry.PointsDelta,
		entry.Reason,
		nullableJSON(entry.MetaJSON),
		entry.CreatedAt,
	)
	return err
}

func nullableJSON(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	return string(data)
}
