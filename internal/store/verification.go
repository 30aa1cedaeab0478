package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/BigSlendr/BBE-Menu/types"
)

// VerificationRepository persists per-user ID-review state. Each user has
// at most one row; re-uploads replace it.
type VerificationRepository struct {
	db *sql.DB
}

func NewVerificationRepository(db *sql.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// Upsert writes the user's verification row, replacing any prior upload.
func (r *VerificationRepository) Upsert(ctx context.Context, verification types.Verification) error {
	const query = `
		INSERT INTO user_verification (user_id, status, id_key, selfie_key, id_expiration, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			status = EXCLUDED.status,
			id_key = EXCLUDED.id_key,
			selfie_key = EXCLUDED.selfie_key,
			id_expiration = EXCLUDED.id_expiration,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, query,
		verification.UserID,
		verification.Status,
		verification.IDKey,
		verification.SelfieKey,
		verification.IDExpiration,
		verification.UpdatedAt,
	)
	return err
}

func (r *VerificationRepository) Get(ctx context.Context, userID string) (types.Verification, error) {
	const query = `
		SELECT user_id, status, id_key, selfie_key, id_expiration, updated_at
		FROM user_verification
		WHERE user_id = $1`
	var verification types.Verification
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&verification.UserID,
		&verification.Status,
		&verification.IDKey,
		&verification.SelfieKey,
		&verification.IDExpiration,
		&verification.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Verification{}, ErrNotFound
	}
	return verification, err
}

// ListForReview returns verification rows joined with the owning user's
// identity fields, filtered by status ("all" lifts the filter).
func (r *VerificationRepository) ListForReview(ctx context.Context, status string, limit int) ([]types.Verification, error) {
	query := `
		SELECT v.user_id, v.status, v.id_key, v.selfie_key, v.id_expiration, v.updated_at,
			u.email, u.first_name, u.last_name
		FROM user_verification v
		JOIN users u ON u.id = v.user_id`
	binds := []any{limit}
	if status != "" && status != "all" {
		binds = append(binds, status)
		query += ` WHERE v.status = $2`
	}
	query += ` ORDER BY v.updated_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, binds...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []types.Verification
	for rows.Next() {
		var verification types.Verification
		if err := rows.Scan(
			&verification.UserID,
			&verification.Status,
			&verification.IDKey,
			&verification.SelfieKey,
			&verification.IDExpiration,
			&verification.UpdatedAt,
			&verification.Email,
			&verification.FirstName,
			&verification.LastName,
		); err != nil {
			return nil, err
		}
		list = append(list, verification)
	}
	return list, rows.Err()
}

// SetStatus records a review decision without touching the uploaded
// keys. Users who never uploaded still get a row, so a reviewer can act
// on any account.
func (r *VerificationRepository) SetStatus(ctx context.Context, userID, status string) error {
	const query = `
		INSERT INTO user_verification (user_id, status, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`
	_, err := r.db.ExecContext(ctx, query, userID, status, time.Now())
	return err
}
