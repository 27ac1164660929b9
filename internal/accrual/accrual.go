// Package accrual advances the gold balance by the time elapsed since the last tick.
//
// Rates are converted to milli-gold per second and time to milliseconds, so one
// tick over [0,T] and two ticks over [0,t] and [t,T] produce identical balances:
// the sub-unit part of every tick is carried in GameState.GoldRemainder.
package accrual

import (
	"math"
	"math/big"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/xtding233/idle-venues/internal/catalog"
	"github.com/xtding233/idle-venues/internal/progression"
	"github.com/xtding233/idle-venues/internal/state"
)

// Result reports what one tick changed.
type Result struct {
	GoldGained   int64         `json:"gold_gained"`
	LevelsGained []int         `json:"levels_gained"`
	Elapsed      time.Duration `json:"elapsed"`
}

// RateMilli sums the generation of every assignment plus the passive base revenue of
// each venue that has at least one assignment, in milli-gold per second. The sum
// saturates; a rate that catalog.MilliRate rejects is an error.
func RateMilli(s *state.GameState, cat *catalog.Catalog) (int64, error) {
	var total int64
	active := make(map[string]bool)
	for _, a := range s.Assignments {
		v, ok := cat.Venue(a.VenueID)
		if !ok {
			return 0, errors.AssertionFailedf("assignment of %q references unknown venue %q", a.CharacterID, a.VenueID)
		}
		m, err := catalog.MilliRate(a.GenerationRate)
		if err != nil {
			return 0, errors.Wrapf(err, "assignment of %q", a.CharacterID)
		}
		total = addSat(total, m)
		if !active[v.ID] {
			active[v.ID] = true
			m, err := catalog.MilliRate(v.BaseRevenue)
			if err != nil {
				return 0, errors.Wrapf(err, "venue %q", v.ID)
			}
			total = addSat(total, m)
		}
	}
	return total, nil
}

// Rate is RateMilli in gold per second.
func Rate(s *state.GameState, cat *catalog.Catalog) (float64, error) {
	m, err := RateMilli(s, cat)
	return float64(m) / catalog.RateScale, err
}

// Tick accrues gold for the interval since s.LastAccrualMillis and then recomputes the
// level, granting the level-up bonus per level crossed. A clock that moved backwards
// accrues nothing and leaves the accrual clock where it was.
func Tick(s *state.GameState, cat *catalog.Catalog, now time.Time) (Result, error) {
	nowMs := now.UnixMilli()
	elapsed := nowMs - s.LastAccrualMillis
	if elapsed <= 0 {
		return Result{}, nil
	}

	rate, err := RateMilli(s, cat)
	if err != nil {
		return Result{}, err
	}

	whole, rem := accrue(rate, elapsed, s.GoldRemainder)
	s.Gold = addSat(s.Gold, whole)
	s.CumulativeEarnings = addSat(s.CumulativeEarnings, whole)
	s.GoldRemainder = rem
	s.LastAccrualMillis = nowMs

	return Result{
		GoldGained:   whole,
		LevelsGained: progression.Apply(s),
		Elapsed:      time.Duration(elapsed) * time.Millisecond,
	}, nil
}

// accrue returns floor((carry + rate*ms) / 1e6) and the new carry. Very long catch-up
// intervals overflow int64 and take the big.Int path; the whole part saturates.
func accrue(rateMilli, ms, carry int64) (whole, rem int64) {
	if rateMilli <= 0 {
		return 0, carry
	}
	if ms <= (math.MaxInt64-carry)/rateMilli {
		micro := rateMilli*ms + carry
		return micro / state.MicroPerUnit, micro % state.MicroPerUnit
	}
	micro := new(big.Int).Mul(big.NewInt(rateMilli), big.NewInt(ms))
	micro.Add(micro, big.NewInt(carry))
	q, r := new(big.Int).QuoRem(micro, big.NewInt(state.MicroPerUnit), new(big.Int))
	if !q.IsInt64() {
		return math.MaxInt64, r.Int64()
	}
	return q.Int64(), r.Int64()
}

func addSat(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
