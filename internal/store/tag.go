package store

import (
	"context"
	"database/sql"

	"github.com/BigSlendr/BBE-Menu/types"
)

// TagRepository manages the free-form labels admins attach to customers.
type TagRepository struct {
	db *sql.DB
}

func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) List(ctx context.Context, userID string) ([]types.CustomerTag, error) {
	const query = `
		SELECT user_id, tag, created_at, created_by_admin_id
		FROM customer_tags
		WHERE user_id = $1
		ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []types.CustomerTag
	for rows.Next() {
		var tag types.CustomerTag
		if err := rows.Scan(&tag.UserID, &tag.Tag, &tag.CreatedAt, &tag.CreatedByAdminID); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (r *TagRepository) Add(ctx context.Context, tag types.CustomerTag) error {
	const query = `
		INSERT INTO customer_tags (user_id, tag, created_at, created_by_admin_id)
		VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, tag.UserID, tag.Tag, tag.CreatedAt, tag.CreatedByAdminID)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *TagRepository) Remove(ctx context.Context, userID, tag string) error {
	const query = `DELETE FROM customer_tags WHERE user_id = $1 AND tag = $2`
	result, err := r.db.ExecContext(ctx, query, userID, tag)
	if err != nil {
		return err
	}
	return expectRow(result)
}
