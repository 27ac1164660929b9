// Package gacha resolves summons: tier cost, rarity gating, the eligible pool, the
// uniform draw and the new-unlock or duplicate outcome.
package gacha

import (
	"github.com/cockroachdb/errors"

	"github.com/xtding233/idle-venues/internal/catalog"
	"github.com/xtding233/idle-venues/internal/state"
	"github.com/xtding233/idle-venues/internal/upgrade"
)

var (
	ErrInsufficientCurrency = errors.New("insufficient currency")
	ErrRarityLocked         = errors.New("rarity locked")
	ErrNoEligibleCharacters = errors.New("no eligible characters")
)

// Outcome is the observable result of one summon.
type Outcome struct {
	Tier        int                      `json:"tier"`
	Cost        int64                    `json:"cost"`
	CharacterID string                   `json:"character_id"`
	Name        string                   `json:"name"`
	New         bool                     `json:"new"`
	Duplicate   upgrade.DuplicateOutcome `json:"duplicate"`
}

// Eligible returns the tier characters whose unlock requirement the player meets,
// in catalog order.
func Eligible(s *state.GameState, cat *catalog.Catalog, tier int) []catalog.Character {
	var out []catalog.Character
	for _, ch := range cat.CharactersOfTier(tier) {
		if ch.Unlock.Satisfied(s.Level, s.CumulativeEarnings) {
			out = append(out, ch)
		}
	}
	return out
}

// LockingTier returns the lowest tier below tier that still has an eligible character
// without every upgrade applied, or 0 when tier is open.
func LockingTier(s *state.GameState, cat *catalog.Catalog, tier int) int {
	for t := 1; t < tier; t++ {
		for _, ch := range Eligible(s, cat, t) {
			if !upgrade.Maxed(s, ch.ID) {
				return t
			}
		}
	}
	return 0
}

// Summon spends the tier cost and draws one eligible character uniformly. A character
// not yet owned is unlocked at duplicate level 1; an owned one is banked as a duplicate
// or converted to gold. On error s is unchanged.
func Summon(s *state.GameState, cat *catalog.Catalog, tier int, rng RandomSource) (Outcome, error) {
	cost, err := cat.Costs.CostForTier(tier)
	if err != nil {
		return Outcome{}, err
	}
	if s.Gems < cost {
		return Outcome{}, errors.Wrapf(ErrInsufficientCurrency, "need %d %s, have %d", cost, cat.Costs.Name, s.Gems)
	}
	if t := LockingTier(s, cat, tier); t > 0 {
		return Outcome{}, errors.Wrapf(ErrRarityLocked, "tier %d requires every eligible tier %d character maxed", tier, t)
	}
	pool := Eligible(s, cat, tier)
	if len(pool) == 0 {
		return Outcome{}, ErrNoEligibleCharacters
	}
	i, err := Pick(len(pool), rng)
	if err != nil {
		return Outcome{}, err
	}
	ch := pool[i]

	out := Outcome{Tier: tier, Cost: cost, CharacterID: ch.ID, Name: ch.Name}
	if s.Record(ch.ID) == nil {
		s.Unlocked = append(s.Unlocked, state.UnlockedCharacter{CharacterID: ch.ID, DuplicateLevel: 1})
		out.New = true
	} else {
		dup, err := upgrade.AddDuplicate(s, ch.ID)
		if err != nil {
			return Outcome{}, err
		}
		out.Duplicate = dup
	}
	s.Gems -= cost
	return out, nil
}
