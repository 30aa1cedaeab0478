package types

import "time"

// Verification statuses.
const (
	VerificationUnverified = "unverified"
	VerificationPending    = "pending"
	VerificationApproved   = "approved"
	VerificationRejected   = "rejected"
)

// Verification holds one user's uploaded-ID review state. IDKey and
// SelfieKey are object-storage keys, not URLs.
type Verification struct {
	UserID       string     `json:"user_id" db:"user_id"`
	Status       string     `json:"status" db:"status"`
	IDKey        *string    `json:"id_key" db:"id_key"`
	SelfieKey    *string    `json:"selfie_key" db:"selfie_key"`
	IDExpiration *string    `json:"id_expiration" db:"id_expiration"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`

	// Populated by admin review listings.
	Email     string `json:"email,omitempty" db:"-"`
	FirstName string `json:"first_name,omitempty" db:"-"`
	LastName  string `json:"last_name,omitempty" db:"-"`
}
