// Package progression maps cumulative earnings to player level.
package progression

import (
	"math"
	"math/big"

	"github.com/xtding233/idle-venues/internal/state"
)

const (
	// BaseRequirement is the earnings needed to go from level 1 to level 2.
	BaseRequirement = 1000
	// LevelUpBonus is the premium currency granted once per level crossed.
	LevelUpBonus = 500
)

// requirements[n-1] = floor(1000 * 1.5^(n-1)), saturated at MaxInt64.
var requirements = buildRequirements()

// buildRequirements evaluates 1000*3^k/2^k exactly; float64 powers drift once 3^k
// no longer fits in the mantissa.
func buildRequirements() []int64 {
	var out []int64
	limit := big.NewInt(math.MaxInt64)
	num := big.NewInt(BaseRequirement)
	den := big.NewInt(1)
	three, two := big.NewInt(3), big.NewInt(2)
	q := new(big.Int)
	for {
		q.Quo(num, den)
		if q.Cmp(limit) >= 0 {
			out = append(out, math.MaxInt64)
			return out
		}
		out = append(out, q.Int64())
		num.Mul(num, three)
		den.Mul(den, two)
	}
}

// RequirementFor returns the earnings needed to go from level to level+1.
func RequirementFor(level int) int64 {
	if level < 1 {
		level = 1
	}
	if level > len(requirements) {
		return math.MaxInt64
	}
	return requirements[level-1]
}

// LevelForEarnings walks the curve from level 1, subtracting each level's requirement
// while the remainder still covers it.
func LevelForEarnings(earnings int64) int {
	level, _ := walk(earnings)
	return level
}

func walk(earnings int64) (level int, remaining int64) {
	level, remaining = 1, earnings
	for {
		req := RequirementFor(level)
		if remaining < req {
			return level, remaining
		}
		remaining -= req
		level++
	}
}

// Progress describes how far a player is into the current level.
type Progress struct {
	Level    int     `json:"level"`
	Into     int64   `json:"into"`     // earnings within the current level
	Required int64   `json:"required"` // requirement of the current level
	Percent  float64 `json:"percent"`  // 0..100
}

// ProgressFor computes the progress display for cumulative earnings.
func ProgressFor(earnings int64) Progress {
	level, into := walk(earnings)
	req := RequirementFor(level)
	pct := 0.0
	if req > 0 {
		pct = float64(into) / float64(req) * 100
	}
	return Progress{
		Level:    level,
		Into:     into,
		Required: req,
		Percent:  math.Max(0, math.Min(100, pct)),
	}
}

// Apply recomputes s.Level from s.CumulativeEarnings and pays LevelUpBonus gems for every
// level crossed. It returns the levels gained, in order. Level never moves down.
func Apply(s *state.GameState) []int {
	target := LevelForEarnings(s.CumulativeEarnings)
	if target <= s.Level {
		return nil
	}
	gained := make([]int, 0, target-s.Level)
	for l := s.Level + 1; l <= target; l++ {
		s.Gems += LevelUpBonus
		gained = append(gained, l)
	}
	s.Level = target
	return gained
}
