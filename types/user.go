package types

import "time"

// User represents a storefront account.
// It contains identity, verification state, and loyalty bookkeeping.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id" db:"id"`

	// Email is the user's login email, stored lowercased.
	Email string `json:"email" db:"email"`

	// Phone is the user's contact phone number.
	Phone string `json:"phone" db:"phone"`

	// FirstName and LastName are the user's profile name fields.
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`

	// DOB is the user's date of birth as YYYY-MM-DD, collected at signup
	// for age gating.
	DOB string `json:"dob" db:"dob"`

	// PasswordHash stores the PBKDF2-encoded representation of the user's
	// password. This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// AccountStatus is the ID-verification review outcome:
	// "pending", "approved", or "denied". Placing an order requires
	// exactly "approved".
	AccountStatus string `json:"account_status" db:"account_status"`

	// VerifiedAt is set when an admin approves the account.
	VerifiedAt *time.Time `json:"verified_at" db:"verified_at"`

	// VerifiedByAdminID records which admin approved the account.
	VerifiedByAdminID *string `json:"verified_by_admin_id,omitempty" db:"verified_by_admin_id"`

	// StatusReason carries the denial reason when AccountStatus is "denied".
	StatusReason *string `json:"status_reason" db:"status_reason"`

	// PointsBalance is the denormalized sum of the user's points ledger
	// deltas. Every write that appends a ledger entry updates it in the
	// same transaction.
	PointsBalance int64 `json:"points_balance" db:"points_balance"`

	// LifetimeSpendCents accumulates order subtotals and drives the
	// computed loyalty tier.
	LifetimeSpendCents int64 `json:"lifetime_spend_cents" db:"lifetime_spend_cents"`

	// Tier is the loyalty level computed from LifetimeSpendCents:
	// "member", "insider", "elite", or "reserve".
	Tier string `json:"tier" db:"tier"`

	// TierOverride, when set by an admin, takes precedence over Tier
	// wherever tier is read.
	TierOverride       *string    `json:"tier_override" db:"tier_override"`
	TierOverrideReason *string    `json:"tier_override_reason,omitempty" db:"tier_override_reason"`
	TierOverrideAt     *time.Time `json:"tier_override_at,omitempty" db:"tier_override_at"`

	// IsActive is false for deactivated accounts.
	IsActive           bool       `json:"is_active" db:"is_active"`
	DeactivatedAt      *time.Time `json:"deactivated_at" db:"deactivated_at"`
	DeactivationReason *string    `json:"deactivation_reason,omitempty" db:"deactivation_reason"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EffectiveTier resolves the tier an account is treated as: the admin
// override when present, otherwise the computed tier.
func (u User) EffectiveTier() string {
	if u.TierOverride != nil && *u.TierOverride != "" {
		return *u.TierOverride
	}
	if u.Tier == "" {
		return "member"
	}
	return u.Tier
}

// Session maps an opaque cookie token to a user with an expiry.
// Expired sessions are treated as invalid but are not physically purged.
type Session struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Valid reports whether the session may authenticate a request at the
// given instant.
func (s Session) Valid(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

// CustomerTag is an admin-attached label, unique per (user, tag).
type CustomerTag struct {
	UserID           string    `json:"user_id" db:"user_id"`
	Tag              string    `json:"tag" db:"tag"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	CreatedByAdminID *string   `json:"created_by_admin_id" db:"created_by_admin_id"`
}

// PasswordResetToken is a single-use credential-recovery token. Only the
// SHA-256 of the token is stored.
type PasswordResetToken struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"user_id" db:"user_id"`
	TokenHash string     `json:"-" db:"token_hash"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	UsedAt    *time.Time `json:"used_at" db:"used_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	RequestIP string     `json:"-" db:"request_ip"`
	UserAgent string     `json:"-" db:"user_agent"`
}
