package types

import "time"

// Ledger entry types.
const (
	LedgerTypeEarn        = "earn"
	LedgerTypeAdminAdjust = "admin_adjust"
)

// LedgerEntry is an append-only point delta tied to a user and optionally
// an order. Entries are never mutated or deleted; the user's
// PointsBalance must always equal the sum of their deltas.
type LedgerEntry struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	OrderID     *string   `json:"order_id" db:"order_id"`
	Type        string    `json:"type" db:"type"`
	PointsDelta int64     `json:"points_delta" db:"points_delta"`
	Reason      string    `json:"reason" db:"reason"`
	MetaJSON    []byte    `json:"meta,omitempty" db:"meta_json"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
