// Package state holds the single mutable aggregate of a player's economy.
//
// GameState is plain data: every core operation receives it by pointer and the
// caller owns the transaction boundary. Nothing in this package locks.
package state

import (
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultStartingGems is the premium balance of a new game.
const DefaultStartingGems = 1000

// MicroPerUnit is the number of remainder units in one whole gold coin.
const MicroPerUnit = 1_000_000

var (
	ErrNotUnlocked      = errors.New("character not unlocked")
	ErrUnknownCharacter = errors.New("unknown character")
	ErrUnknownVenue     = errors.New("unknown venue")
)

// UnlockedCharacter records ownership of a character. Never deleted once created.
type UnlockedCharacter struct {
	CharacterID      string `json:"character_id" codec:"character_id"`
	DuplicateLevel   int    `json:"duplicate_level" codec:"duplicate_level"`     // >= 1, rate multiplier
	Upgrades         int    `json:"upgrades" codec:"upgrades"`                   // 0..MaxUpgrades
	BankedDuplicates int    `json:"banked_duplicates" codec:"banked_duplicates"` // waiting to be spent on upgrades
}

// Assignment deploys a character to a venue; GenerationRate is snapshotted.
type Assignment struct {
	CharacterID    string  `json:"character_id" codec:"character_id"`
	VenueID        string  `json:"venue_id" codec:"venue_id"`
	GenerationRate float64 `json:"generation_rate" codec:"generation_rate"`
}

// GameState is the economy aggregate.
type GameState struct {
	Level                 int                 `json:"level" codec:"level"`
	Gold                  int64               `json:"gold" codec:"gold"`
	GoldRemainder         int64               `json:"gold_remainder" codec:"gold_remainder"` // micro-gold carried between ticks
	Gems                  int64               `json:"gems" codec:"gems"`
	CumulativeEarnings    int64               `json:"cumulative_earnings" codec:"cumulative_earnings"`
	LastAccrualMillis     int64               `json:"last_accrual_ms" codec:"last_accrual_ms"`
	Unlocked              []UnlockedCharacter `json:"unlocked" codec:"unlocked"`
	Assignments           []Assignment        `json:"assignments" codec:"assignments"`
	LastLevelAcknowledged int                 `json:"last_level_acknowledged" codec:"last_level_acknowledged"`
}

// New returns a fresh game at level 1 whose accrual clock starts at now.
func New(now time.Time, startingGems int64) *GameState {
	return &GameState{
		Level:                 1,
		Gems:                  startingGems,
		LastAccrualMillis:     now.UnixMilli(),
		LastLevelAcknowledged: 1,
	}
}

// Balance is the fractional gold balance including the carried remainder.
func (s *GameState) Balance() float64 {
	return float64(s.Gold) + float64(s.GoldRemainder)/MicroPerUnit
}

// LastAccrual returns the accrual clock as a time.
func (s *GameState) LastAccrual() time.Time {
	return time.UnixMilli(s.LastAccrualMillis)
}

// Record returns the unlock record for characterID, or nil.
func (s *GameState) Record(characterID string) *UnlockedCharacter {
	for i := range s.Unlocked {
		if s.Unlocked[i].CharacterID == characterID {
			return &s.Unlocked[i]
		}
	}
	return nil
}

// AssignmentOf returns the live assignment of characterID, or nil.
func (s *GameState) AssignmentOf(characterID string) *Assignment {
	for i := range s.Assignments {
		if s.Assignments[i].CharacterID == characterID {
			return &s.Assignments[i]
		}
	}
	return nil
}

// AssignmentsAt returns the assignments at venueID in deployment order.
func (s *GameState) AssignmentsAt(venueID string) []Assignment {
	var out []Assignment
	for _, a := range s.Assignments {
		if a.VenueID == venueID {
			out = append(out, a)
		}
	}
	return out
}

// RemoveAssignment drops characterID's assignment and reports whether one existed.
func (s *GameState) RemoveAssignment(characterID string) bool {
	for i := range s.Assignments {
		if s.Assignments[i].CharacterID == characterID {
			s.Assignments = append(s.Assignments[:i], s.Assignments[i+1:]...)
			return true
		}
	}
	return false
}

// PendingLevelUps lists levels reached but not yet acknowledged by the presentation layer.
func (s *GameState) PendingLevelUps() []int {
	var out []int
	for l := s.LastLevelAcknowledged + 1; l <= s.Level; l++ {
		out = append(out, l)
	}
	return out
}

// Clone returns a deep copy.
func (s *GameState) Clone() *GameState {
	c := *s
	c.Unlocked = append([]UnlockedCharacter(nil), s.Unlocked...)
	c.Assignments = append([]Assignment(nil), s.Assignments...)
	return &c
}
