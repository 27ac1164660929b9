package token

import "github.com/cockroachdb/errors"

// MaxTier is the highest rarity tier that can be summoned.
const MaxTier = 5

var ErrInvalidTier = errors.New("invalid rarity tier; must be 1..5")

// Schedule defines how many premium tokens a summon of each tier costs.
type Schedule struct {
	Name    string         // e.g. "Gems"
	PerTier [MaxTier]int64 // PerTier[0] is the 1★ cost, PerTier[4] the 5★ cost
}

// DefaultSchedule is the escalating 100..500 gem schedule.
func DefaultSchedule() Schedule {
	return Schedule{
		Name:    "Gems",
		PerTier: [MaxTier]int64{100, 200, 300, 400, 500},
	}
}

// ValidTier reports whether tier is in 1..MaxTier.
func ValidTier(tier int) bool {
	return tier >= 1 && tier <= MaxTier
}

// CostForTier returns the fixed cost of one summon at tier.
func (s Schedule) CostForTier(tier int) (int64, error) {
	if !ValidTier(tier) {
		return 0, ErrInvalidTier
	}
	return s.PerTier[tier-1], nil
}

// CostForSummons returns how many tokens n summons of tier require
func (s Schedule) CostForSummons(tier, n int) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	c, err := s.CostForTier(tier)
	if err != nil {
		return 0, err
	}
	return c * int64(n), nil
}
