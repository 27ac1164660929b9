// Package venue deploys characters to venues and reports venue revenue.
package venue

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/xtding233/idle-venues/internal/catalog"
	"github.com/xtding233/idle-venues/internal/state"
)

var (
	ErrVenueLocked = errors.New("venue locked")
	ErrNoCapacity  = errors.New("no venue with free capacity")
	ErrNotAssigned = errors.New("character not assigned")
)

// VenueLockedError reports the level at which a matching venue opens.
type VenueLockedError struct {
	Area          catalog.VenueType
	RequiredLevel int
}

func (e *VenueLockedError) Error() string {
	return fmt.Sprintf("%s area unlocks at level %d", e.Area, e.RequiredLevel)
}

// Is lets errors.Is(err, ErrVenueLocked) match.
func (e *VenueLockedError) Is(target error) bool { return target == ErrVenueLocked }

// Assign deploys characterID to the first venue of its area that is unlocked and has a
// free slot, replacing any earlier assignment of the same character. The generation
// rate is snapshotted as base rate × duplicate level. On error s is unchanged.
func Assign(s *state.GameState, cat *catalog.Catalog, characterID string) (string, error) {
	rec := s.Record(characterID)
	if rec == nil {
		return "", state.ErrNotUnlocked
	}
	ch, ok := cat.Character(characterID)
	if !ok {
		return "", errors.AssertionFailedf("unlocked character %q missing from catalog", characterID)
	}

	lockedAt := 0
	var target *catalog.Venue
	for i := range cat.Venues {
		v := &cat.Venues[i]
		if v.Type != ch.Area {
			continue
		}
		if v.UnlockLevel > s.Level {
			if lockedAt == 0 || v.UnlockLevel < lockedAt {
				lockedAt = v.UnlockLevel
			}
			continue
		}
		if occupied(s, v.ID, characterID) < v.MaxAssistants {
			target = v
			break
		}
	}

	if target == nil {
		if lockedAt > 0 {
			return "", &VenueLockedError{Area: ch.Area, RequiredLevel: lockedAt}
		}
		return "", ErrNoCapacity
	}

	s.RemoveAssignment(characterID)
	s.Assignments = append(s.Assignments, state.Assignment{
		CharacterID:    characterID,
		VenueID:        target.ID,
		GenerationRate: ch.BaseRate * float64(rec.DuplicateLevel),
	})
	return target.ID, nil
}

// occupied counts assignments at venueID, not counting the character being moved.
func occupied(s *state.GameState, venueID, except string) int {
	n := 0
	for _, a := range s.Assignments {
		if a.VenueID == venueID && a.CharacterID != except {
			n++
		}
	}
	return n
}

// Unassign removes characterID from its venue.
func Unassign(s *state.GameState, characterID string) error {
	if !s.RemoveAssignment(characterID) {
		return ErrNotAssigned
	}
	return nil
}

// Resnapshot refreshes the generation rate of characterID's live assignment after its
// duplicate level changed. It is a no-op when the character is not deployed.
func Resnapshot(s *state.GameState, cat *catalog.Catalog, characterID string) error {
	a := s.AssignmentOf(characterID)
	if a == nil {
		return nil
	}
	rec := s.Record(characterID)
	ch, ok := cat.Character(characterID)
	if rec == nil || !ok {
		return errors.AssertionFailedf("assignment of %q has no unlock record or definition", characterID)
	}
	a.GenerationRate = ch.BaseRate * float64(rec.DuplicateLevel)
	return nil
}
