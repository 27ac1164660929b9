// Package upgrade turns duplicate summons into permanent rate upgrades and evaluates
// synergy bonuses of the deployed set.
package upgrade

import (
	"github.com/cockroachdb/errors"

	"github.com/xtding233/idle-venues/internal/catalog"
	"github.com/xtding233/idle-venues/internal/state"
	"github.com/xtding233/idle-venues/internal/venue"
)

// DuplicateReward is the gold paid for a duplicate that can no longer be banked.
const DuplicateReward = 50

var (
	ErrNoDuplicatesAvailable = errors.New("no banked duplicates available")
	ErrMaxUpgradesReached    = errors.New("max upgrades reached")
)

// DuplicateOutcome tells whether a duplicate was banked or converted to gold.
type DuplicateOutcome struct {
	Banked bool  `json:"banked"`
	Reward int64 `json:"reward,omitempty"`
}

// AddDuplicate banks one duplicate of characterID. The bank never holds more duplicates
// than upgrades still possible; anything beyond that pays DuplicateReward gold instead.
func AddDuplicate(s *state.GameState, characterID string) (DuplicateOutcome, error) {
	rec := s.Record(characterID)
	if rec == nil {
		return DuplicateOutcome{}, state.ErrNotUnlocked
	}
	if rec.Upgrades+rec.BankedDuplicates >= state.MaxUpgrades {
		s.Gold += DuplicateReward
		return DuplicateOutcome{Reward: DuplicateReward}, nil
	}
	rec.BankedDuplicates++
	return DuplicateOutcome{Banked: true}, nil
}

// Upgrade spends one banked duplicate to raise the upgrade counter and duplicate level
// by one, and re-snapshots the character's live assignment rate.
func Upgrade(s *state.GameState, cat *catalog.Catalog, characterID string) error {
	rec := s.Record(characterID)
	if rec == nil {
		return state.ErrNotUnlocked
	}
	if rec.Upgrades >= state.MaxUpgrades {
		return ErrMaxUpgradesReached
	}
	if rec.BankedDuplicates <= 0 {
		return ErrNoDuplicatesAvailable
	}
	rec.BankedDuplicates--
	rec.Upgrades++
	rec.DuplicateLevel++
	return venue.Resnapshot(s, cat, characterID)
}

// Maxed reports whether characterID is unlocked with every upgrade applied.
func Maxed(s *state.GameState, characterID string) bool {
	rec := s.Record(characterID)
	return rec != nil && rec.Upgrades >= state.MaxUpgrades
}
