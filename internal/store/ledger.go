package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/BigSlendr/BBE-Menu/types"
)

// LedgerRepository reads the append-only points ledger and applies manual
// admin adjustments.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) ListForUser(ctx context.Context, userID string, limit int) ([]types.LedgerEntry, error) {
	const query = `
		SELECT id, user_id, order_id, type, points_delta, reason, meta_json, created_at
		FROM points_ledger
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []types.LedgerEntry
	for rows.Next() {
		var entry types.LedgerEntry
		var meta sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.OrderID,
			&entry.Type,
			&entry.PointsDelta,
			&entry.Reason,
			&meta,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if meta.Valid {
			entry.MetaJSON = []byte(meta.String)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// AdjustPoints appends an admin_adjust entry and moves the user's balance
// by the same delta in one transaction. Returns the new balance.
func (r *LedgerRepository) AdjustPoints(ctx context.Context, entry types.LedgerEntry) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var balance int64
	const lockUser = `SELECT points_balance FROM users WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, lockUser, entry.UserID).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}

	if err := insertLedgerEntry(ctx, tx, entry); err != nil {
		return 0, err
	}

	newBalance := balance + entry.PointsDelta
	const updateUser = `UPDATE users SET points_balance = $1, updated_at = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, updateUser, newBalance, time.Now(), entry.UserID); err != nil {
		return 0, err
	}

	return newBalance, tx.Commit()
}
