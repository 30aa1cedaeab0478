package services

import (
	"testing"

	"github.com/BigSlendr/BBE-Menu/types"
	"github.com/stretchr/testify/assert"
)

func TestEarnPoints(t *testing.T) {
	cases := []struct {
		subtotalCents int64
		want          int64
	}{
		{0, 0},
		{-500, 0},
		{99, 0},
		{100, 10},
		{199, 10},
		{2599, 250},
		{10000, 1000},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EarnPoints(tc.subtotalCents), "subtotal=%d", tc.subtotalCents)
	}
}

func TestTierForSpendBoundaries(t *testing.T) {
	cases := []struct {
		spendCents int64
		want       string
	}{
		{0, TierMember},
		{49_999, TierMember},
		{50_000, TierInsider},
		{149_999, TierInsider},
		{150_000, TierElite},
		{399_999, TierElite},
		{400_000, TierReserve},
		{1_000_000, TierReserve},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TierForSpend(tc.spendCents), "spend=%d", tc.spendCents)
	}
}

func TestEffectiveTierOverrideWins(t *testing.T) {
	override := TierReserve
	user := types.User{Tier: TierMember, TierOverride: &override}
	assert.Equal(t, TierReserve, user.EffectiveTier())

	user.TierOverride = nil
	assert.Equal(t, TierMember, user.EffectiveTier())

	empty := ""
	user.TierOverride = &empty
	assert.Equal(t, TierMember, user.EffectiveTier())

	user = types.User{}
	assert.Equal(t, TierMember, user.EffectiveTier())
}

func TestValidTier(t *testing.T) {
	for _, tier := range []string{TierMember, TierInsider, TierElite, TierReserve} {
		assert.True(t, ValidTier(tier))
	}
	assert.False(t, ValidTier(""))
	assert.False(t, ValidTier("platinum"))
}
