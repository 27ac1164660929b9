package state

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/idle-venues/internal/catalog"
	"github.com/xtding233/idle-venues/internal/token"
)

func testCatalog() *catalog.Catalog {
	return catalog.New(
		[]catalog.Character{
			{ID: "a", Name: "Alpha", Rarity: 1, Area: catalog.Market, BaseRate: 1},
			{ID: "b", Name: "Beta", Rarity: 1, Area: catalog.Market, BaseRate: 2},
		},
		[]catalog.Venue{
			{ID: "stall", Name: "Stall", Type: catalog.Market, BaseRevenue: 1, MaxAssistants: 1, UnlockLevel: 1},
			{ID: "hall", Name: "Hall", Type: catalog.Commemoration, BaseRevenue: 1, MaxAssistants: 1, UnlockLevel: 3},
		},
		nil,
		token.DefaultSchedule(),
	)
}

func TestNewGame(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)
	s := New(now, DefaultStartingGems)

	assert.Equal(t, 1, s.Level)
	assert.Equal(t, int64(1000), s.Gems)
	assert.Zero(t, s.Gold)
	assert.Zero(t, s.CumulativeEarnings)
	assert.Equal(t, now, s.LastAccrual())
	assert.Empty(t, s.PendingLevelUps())
	require.NoError(t, s.CheckInvariants(testCatalog()))
}

func TestAssignmentHelpers(t *testing.T) {
	s := New(time.Now(), 0)
	s.Unlocked = []UnlockedCharacter{{CharacterID: "a", DuplicateLevel: 1}}
	s.Assignments = []Assignment{{CharacterID: "a", VenueID: "stall", GenerationRate: 1}}

	require.NotNil(t, s.Record("a"))
	assert.Nil(t, s.Record("b"))
	require.NotNil(t, s.AssignmentOf("a"))
	assert.Len(t, s.AssignmentsAt("stall"), 1)

	assert.True(t, s.RemoveAssignment("a"))
	assert.False(t, s.RemoveAssignment("a"))
	assert.Empty(t, s.Assignments)
}

func TestCloneIsDeep(t *testing.T) {
	s := New(time.Now(), 0)
	s.Unlocked = []UnlockedCharacter{{CharacterID: "a", DuplicateLevel: 1}}
	c := s.Clone()
	c.Unlocked[0].DuplicateLevel = 4
	assert.Equal(t, 1, s.Unlocked[0].DuplicateLevel)
}

func TestPendingLevelUps(t *testing.T) {
	s := New(time.Now(), 0)
	s.Level = 4
	s.LastLevelAcknowledged = 2
	assert.Equal(t, []int{3, 4}, s.PendingLevelUps())
}

func TestCheckInvariants(t *testing.T) {
	cat := testCatalog()
	tests := []struct {
		name   string
		mutate func(s *GameState)
	}{
		{"unknown character", func(s *GameState) {
			s.Unlocked = append(s.Unlocked, UnlockedCharacter{CharacterID: "zzz", DuplicateLevel: 1})
		}},
		{"assignment without record", func(s *GameState) {
			s.Assignments = append(s.Assignments, Assignment{CharacterID: "b", VenueID: "stall"})
		}},
		{"unknown venue", func(s *GameState) {
			s.Assignments = append(s.Assignments, Assignment{CharacterID: "a", VenueID: "moon"})
		}},
		{"locked venue", func(s *GameState) {
			s.Assignments = append(s.Assignments, Assignment{CharacterID: "a", VenueID: "hall"})
		}},
		{"over capacity", func(s *GameState) {
			s.Unlocked = append(s.Unlocked, UnlockedCharacter{CharacterID: "b", DuplicateLevel: 1})
			s.Assignments = append(s.Assignments,
				Assignment{CharacterID: "a", VenueID: "stall"},
				Assignment{CharacterID: "b", VenueID: "stall"})
		}},
		{"double assignment", func(s *GameState) {
			s.Level = 3
			s.Assignments = append(s.Assignments,
				Assignment{CharacterID: "a", VenueID: "stall"},
				Assignment{CharacterID: "a", VenueID: "hall"})
		}},
		{"upgrades above cap", func(s *GameState) {
			s.Unlocked[0].Upgrades = MaxUpgrades + 1
		}},
		{"remainder overflow", func(s *GameState) {
			s.GoldRemainder = MicroPerUnit
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(time.Now(), 0)
			s.Unlocked = []UnlockedCharacter{{CharacterID: "a", DuplicateLevel: 1}}
			tt.mutate(s)
			err := s.CheckInvariants(cat)
			require.Error(t, err)
			assert.True(t, errors.HasAssertionFailure(err))
		})
	}
}
