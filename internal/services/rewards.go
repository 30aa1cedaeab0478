package services

// Loyalty tiers, lowest to highest.
const (
	TierMember  = "member"
	TierInsider = "insider"
	TierElite   = "elite"
	TierReserve = "reserve"
)

// Lifetime-spend thresholds in cents. Lower bounds are inclusive.
const (
	insiderThresholdCents = 50_000
	eliteThresholdCents   = 150_000
	reserveThresholdCents = 400_000
)

// EarnPoints converts an order subtotal to reward points: 10 points per
// whole dollar, partial dollars do not earn. A $25.99 subtotal earns 250.
func EarnPoints(subtotalCents int64) int64 {
	if subtotalCents <= 0 {
		return 0
	}
	return (subtotalCents / 100) * 10
}

// TierForSpend maps lifetime spend to the computed loyalty tier. A manual
// tier override on the user takes precedence over this value; see
// types.User.EffectiveTier.
func TierForSpend(lifetimeSpendCents int64) string {
	switch {
	case lifetimeSpendCents >= reserveThresholdCents:
		return TierReserve
	case lifetimeSpendCents >= eliteThresholdCents:
		return TierElite
	case lifetimeSpendCents >= insiderThresholdCents:
		return TierInsider
	default:
		return TierMember
	}
}

// ValidTier reports whether name is a known tier, for validating manual
// overrides.
func ValidTier(name string) bool {
	switch name {
	case TierMember, TierInsider, TierElite, TierReserve:
		return true
	}
	return false
}
