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

const userColumns = `
	id, email, phone, password_hash, first_name, last_name, dob,
	account_status, verified_at, verified_by_admin_id, status_reason,
	points_balance, lifetime_spend_cents, tier,
	tier_override, tier_override_reason, tier_override_at,
	is_active, deactivated_at, deactivation_reason,
	created_at, updated_at`

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.DOB,
		&user.AccountStatus,
		&user.VerifiedAt,
		&user.VerifiedByAdminID,
		&user.StatusReason,
		&user.PointsBalance,
		&user.LifetimeSpendCents,
		&user.Tier,
		&user.TierOverride,
		&user.TierOverrideReason,
		&user.TierOverrideAt,
		&user.IsActive,
		&user.DeactivatedAt,
		&user.DeactivationReason,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (id, email, phone, password_hash, first_name, last_name, dob,
			account_status, tier, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.DOB,
		user.AccountStatus,
		user.Tier,
		user.IsActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return types.User{}, ErrConflict
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, firstName, lastName, phone *string) error {
	const query = `
		UPDATE users
		SET first_name = COALESCE($1, first_name),
			last_name = COALESCE($2, last_name),
			phone = COALESCE($3, phone),
			updated_at = $4
		WHERE id = $5`
	return r.execExpectingRow(ctx, query, firstName, lastName, phone, time.Now(), id)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`
	return r.execExpectingRow(ctx, query, passwordHash, time.Now(), id)
}

// SetAccountStatus applies a verification review decision. Approval
// stamps verified_at/verified_by; denial records the reason; any other
// status clears all three.
func (r *UserRepository) SetAccountStatus(ctx context.Context, id, status string, adminID *string, reason *string) error {
	now := time.Now()

	var verifiedAt *time.Time
	var verifiedBy *string
	var statusReason *string
	if status == "approved" {
		verifiedAt = &now
		verifiedBy = adminID
	}
	if status == "denied" {
		statusReason = reason
	}

	const query = `
		UPDATE users
		SET account_status = $1,
			verified_at = $2,
			verified_by_admin_id = $3,
			status_reason = $4,
			updated_at = $5
		WHERE id = $6`
	return r.execExpectingRow(ctx, query, status, verifiedAt, verifiedBy, statusReason, now, id)
}

func (r *UserRepository) SetTierOverride(ctx context.Context, id, tier string, reason, adminID *string) error {
	now := time.Now()
	const query = `
		UPDATE users
		SET tier_override = $1,
			tier_override_reason = $2,
			tier_override_at = $3,
			tier_override_by_admin_id = $4,
			updated_at = $3
		WHERE id = $5`
	return r.execExpectingRow(ctx, query, tier, reason, now, adminID, id)
}

func (r *UserRepository) ClearTierOverride(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET tier_override = NULL,
			tier_override_reason = NULL,
			tier_override_at = NULL,
			tier_override_by_admin_id = NULL,
			updated_at = $1
		WHERE id = $2`
	return r.execExpectingRow(ctx, query, time.Now(), id)
}

func (r *UserRepository) Deactivate(ctx context.Context, id string, reason *string) error {
	now := time.Now()
	const query = `
		UPDATE users
		SET is_active = FALSE, deactivated_at = $1, deactivation_reason = $2, updated_at = $1
		WHERE id = $3`
	return r.execExpectingRow(ctx, query, now, reason, id)
}

func (r *UserRepository) Reactivate(ctx context.Context, id string) error {
	const query = `
		UPDATE users
		SET is_active = TRUE, deactivated_at = NULL, deactivation_reason = NULL, updated_at = $1
		WHERE id = $2`
	return r.execExpectingRow(ctx, query, time.Now(), id)
}

// CustomerFilter selects customers for the admin listing. Zero values
// mean "no constraint"; Limit is clamped by the service layer.
type CustomerFilter struct {
	Query  string
	Status string
	Tier   string
	Active *bool
	Tag    string
	Limit  int
}

// Search composes a dynamic WHERE clause from the filter. Free-text
// matching uses ILIKE over email, name, and phone.
func (r *UserRepository) Search(ctx context.Context, filter CustomerFilter) ([]types.User, error) {
	where := make([]string, 0, 5)
	binds := make([]any, 0, 8)
	join := ""

	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		binds = append(binds, like)
		n := len(binds)
		where = append(where, fmt.Sprintf(
			"(u.email ILIKE $%d OR u.first_name ILIKE $%d OR u.last_name ILIKE $%d OR u.phone ILIKE $%d)",
			n, n, n, n))
	}
	if filter.Status != "" && filter.Status != "all" {
		binds = append(binds, filter.Status)
		where = append(where, fmt.Sprintf("u.account_status = $%d", len(binds)))
	}
	if filter.Tier != "" && filter.Tier != "all" {
		binds = append(binds, filter.Tier)
		where = append(where, fmt.Sprintf("LOWER(COALESCE(u.tier_override, u.tier)) = $%d", len(binds)))
	}
	if filter.Active != nil {
		binds = append(binds, *filter.Active)
		where = append(where, fmt.Sprintf("u.is_active = $%d", len(binds)))
	}
	if filter.Tag != "" {
		join = "INNER JOIN customer_tags ct ON ct.user_id = u.id"
		binds = append(binds, filter.Tag)
		where = append(where, fmt.Sprintf("ct.tag = $%d", len(binds)))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}
	binds = append(binds, filter.Limit)

	query := fmt.Sprintf(`
		SELECT DISTINCT %s
		FROM users u
		%s
		%s
		ORDER BY u.created_at DESC
		LIMIT $%d`,
		prefixColumns(userColumns, "u."), join, whereSQL, len(binds))

	rows, err := r.db.QueryContext(ctx, query, binds...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.User, 0, filter.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// ListPendingReview returns accounts awaiting a verification decision,
// most recently touched first.
func (r *UserRepository) ListPendingReview(ctx context.Context) ([]types.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE account_status = 'pending'
		ORDER BY GREATEST(updated_at, created_at) DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Erase hard-deletes a user and their auth/rewards records, detaching
// historical orders. With anonymize set it also nulls the PII snapshot on
// those orders while preserving totals and ids. Runs in one transaction.
func (r *UserRepository) Erase(ctx context.Context, id string, anonymize bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM sessions WHERE user_id = $1`,
		`DELETE FROM user_verification WHERE user_id = $1`,
		`DELETE FROM points_ledger WHERE user_id = $1`,
		`DELETE FROM customer_tags WHERE user_id = $1`,
		`DELETE FROM password_reset_tokens WHERE user_id = $1`,
	}
	if anonymize {
		statements = append(statements, `
			UPDATE orders
			SET customer_name = NULL,
				customer_phone = NULL,
				customer_email = NULL,
				address_json = NULL
			WHERE user_id = $1`)
	}
	statements = append(statements,
		`UPDATE orders SET user_id = NULL WHERE user_id = $1`,
		`DELETE FROM users WHERE id = $1`,
	)

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *UserRepository) CountAll(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users`)
}

func (r *UserRepository) CountActive(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE is_active`)
}

func (r *UserRepository) CountPendingReview(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM users WHERE account_status = 'pending'`)
}

func (r *UserRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *UserRepository) execExpectingRow(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// prefixColumns qualifies each column in a comma-separated list with a
// table alias for use in joined queries.
func prefixColumns(columns, prefix string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = prefix + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
