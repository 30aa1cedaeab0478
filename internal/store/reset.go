package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/BigSlendr/BBE-Menu/types"
)

// ResetRepository persists password-reset tokens and the request throttle
// counters that guard their issuance.
type ResetRepository struct {
	db *sql.DB
}

func NewResetRepository(db *sql.DB) *ResetRepository {
	return &ResetRepository{db: db}
}

func (r *ResetRepository) Create(ctx context.Context, token types.PasswordResetToken) error {
	const query = `
		INSERT INTO password_reset_tokens (id, user_id, token_hash, expires_at, used_at, created_at, request_ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.UsedAt,
		token.CreatedAt,
		token.RequestIP,
		token.UserAgent,
	)
	return err
}

// GetByHash looks up a token by its stored SHA-256 digest. Expired or
// already-used tokens are filtered here so callers see ErrNotFound.
func (r *ResetRepository) GetByHash(ctx context.Context, tokenHash string, now time.Time) (types.PasswordResetToken, error) {
	const query = `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at, request_ip, user_agent
		FROM password_reset_tokens
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > $2`
	var token types.PasswordResetToken
	err := r.db.QueryRowContext(ctx, query, tokenHash, now).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.CreatedAt,
		&token.RequestIP,
		&token.UserAgent,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return types.PasswordResetToken{}, ErrNotFound
	}
	return token, err
}

func (r *ResetRepository) MarkUsed(ctx context.Context, id string) error {
	const query = `UPDATE password_reset_tokens SET used_at = $1 WHERE id = $2 AND used_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}
	return expectRow(result)
}

// ThrottleCheck counts a reset request against the (scope, identifier)
// window and reports whether it stays within limit. A window older than
// the given duration restarts at one.
func (r *ResetRepository) ThrottleCheck(ctx context.Context, scope, identifier string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	cutoff := now.Add(-window)

	const query = `
		INSERT INTO password_reset_throttle (scope, identifier, window_start, request_count, updated_at)
		VALUES ($1, $2, $3, 1, $3)
		ON CONFLICT (scope, identifier) DO UPDATE SET
			request_count = CASE
				WHEN password_reset_throttle.window_start < $4 THEN 1
				ELSE password_reset_throttle.request_count + 1
			END,
			window_start = CASE
				WHEN password_reset_throttle.window_start < $4 THEN $3
				ELSE password_reset_throttle.window_start
			END,
			updated_at = $3
		RETURNING request_count`
	var count int
	if err := r.db.QueryRowContext(ctx, query, scope, identifier, now, cutoff).Scan(&count); err != nil {
		return false, err
	}
	return count <= limit, nil
}
