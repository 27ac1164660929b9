package state

import (
	"github.com/cockroachdb/errors"

	"github.com/xtding233/idle-venues/internal/catalog"
)

// MaxUpgrades caps the upgrade counter of a character.
const MaxUpgrades = 5

// CheckInvariants verifies the cross-entity rules of the aggregate against the catalog.
// A violation can only come from a defect in the core, so it is reported as an
// assertion failure rather than a domain error.
func (s *GameState) CheckInvariants(cat *catalog.Catalog) error {
	if s.Level < 1 {
		return errors.AssertionFailedf("level %d below 1", s.Level)
	}
	if s.CumulativeEarnings < 0 || s.Gems < 0 || s.Gold < 0 {
		return errors.AssertionFailedf("negative balance: gold=%d gems=%d earnings=%d",
			s.Gold, s.Gems, s.CumulativeEarnings)
	}
	if s.GoldRemainder < 0 || s.GoldRemainder >= MicroPerUnit {
		return errors.AssertionFailedf("gold remainder %d out of range", s.GoldRemainder)
	}

	seen := make(map[string]bool, len(s.Unlocked))
	for _, r := range s.Unlocked {
		if seen[r.CharacterID] {
			return errors.AssertionFailedf("character %q unlocked twice", r.CharacterID)
		}
		seen[r.CharacterID] = true
		if _, ok := cat.Character(r.CharacterID); !ok {
			return errors.AssertionFailedf("unlock record references unknown character %q", r.CharacterID)
		}
		if r.DuplicateLevel < 1 {
			return errors.AssertionFailedf("character %q has duplicate level %d", r.CharacterID, r.DuplicateLevel)
		}
		if r.Upgrades < 0 || r.Upgrades > MaxUpgrades || r.BankedDuplicates < 0 {
			return errors.AssertionFailedf("character %q upgrade state out of range: upgrades=%d banked=%d",
				r.CharacterID, r.Upgrades, r.BankedDuplicates)
		}
	}

	assigned := make(map[string]bool, len(s.Assignments))
	perVenue := make(map[string]int)
	for _, a := range s.Assignments {
		if assigned[a.CharacterID] {
			return errors.AssertionFailedf("character %q assigned to more than one venue", a.CharacterID)
		}
		assigned[a.CharacterID] = true
		if !seen[a.CharacterID] {
			return errors.AssertionFailedf("assignment references locked character %q", a.CharacterID)
		}
		v, ok := cat.Venue(a.VenueID)
		if !ok {
			return errors.AssertionFailedf("assignment references unknown venue %q", a.VenueID)
		}
		if v.UnlockLevel > s.Level {
			return errors.AssertionFailedf("venue %q requires level %d, current %d", v.ID, v.UnlockLevel, s.Level)
		}
		perVenue[a.VenueID]++
		if perVenue[a.VenueID] > v.MaxAssistants {
			return errors.AssertionFailedf("venue %q over capacity %d", v.ID, v.MaxAssistants)
		}
	}
	return nil
}
