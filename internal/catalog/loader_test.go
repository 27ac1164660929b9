package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	require.NotEmpty(t, c.Characters)
	require.NotEmpty(t, c.Venues)
	assert.Len(t, c.Synergies, 3)
	assert.Equal(t, "Gems", c.Costs.Name)

	march, ok := c.Character("march")
	require.True(t, ok)
	assert.Equal(t, Market, march.Area)
	assert.Equal(t, UnlockStarter, march.Unlock.Kind)

	byName, ok := c.CharacterByName("Dan Heng Assistant")
	require.True(t, ok)
	assert.Equal(t, "dan-heng", byName.ID)

	v, ok := c.Venue("arcade")
	require.True(t, ok)
	assert.Equal(t, 4, v.UnlockLevel)

	for tier := 1; tier <= 5; tier++ {
		assert.NotEmpty(t, c.CharactersOfTier(tier), "tier %d", tier)
	}
}

func TestParseRejectsBadReferences(t *testing.T) {
	doc := []byte(`
characters:
  - id: a
    name: Alpha
    area: Market
    rarity: 1
    base_generation_rate: 1
  - id: a
    name: Beta
    area: Harbor
    rarity: 7
    base_generation_rate: 1
    unlock: { type: level }
venues:
  - id: v
    name: Stall
    type: Market
    base_revenue: 1
    max_assistants: 0
    unlock_level: 1
synergies:
  - characters: [Alpha, Gamma]
    multiplier: 1
`)
	_, err := Parse(doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCatalog)
	msg := err.Error()
	assert.Contains(t, msg, `duplicate id "a"`)
	assert.Contains(t, msg, `"Harbor"`)
	assert.Contains(t, msg, "unlock.value is required")
	assert.Contains(t, msg, `unknown character name "Gamma"`)
	assert.Contains(t, msg, "MaxAssistants")
	assert.Contains(t, msg, "Rarity")
}

func TestParseDefaultsUnlockToSummon(t *testing.T) {
	c, err := Parse([]byte(`
characters:
  - { id: a, name: Alpha, area: Market, rarity: 1, base_generation_rate: 1 }
  - { id: b, name: Beta, area: Market, rarity: 1, base_generation_rate: 1, unlock: { type: pull } }
venues:
  - { id: v, name: Stall, type: Market, base_revenue: 1, max_assistants: 1, unlock_level: 1 }
`))
	require.NoError(t, err)
	a, _ := c.Character("a")
	b, _ := c.Character("b")
	assert.Equal(t, UnlockSummon, a.Unlock.Kind)
	assert.Equal(t, UnlockSummon, b.Unlock.Kind)
	assert.Equal(t, [5]int64{100, 200, 300, 400, 500}, c.Costs.PerTier)
}

func TestUnlockRequirementSatisfied(t *testing.T) {
	tests := []struct {
		name     string
		req      UnlockRequirement
		level    int
		earnings int64
		want     bool
	}{
		{"starter", UnlockRequirement{Kind: UnlockStarter}, 1, 0, true},
		{"summon", UnlockRequirement{Kind: UnlockSummon}, 1, 0, true},
		{"level below", UnlockRequirement{Kind: UnlockLevel, Value: 3}, 2, 0, false},
		{"level reached", UnlockRequirement{Kind: UnlockLevel, Value: 3}, 3, 0, true},
		{"revenue below", UnlockRequirement{Kind: UnlockRevenue, Value: 5000}, 9, 4999, false},
		{"revenue reached", UnlockRequirement{Kind: UnlockRevenue, Value: 5000}, 1, 5000, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Satisfied(tt.level, tt.earnings))
		})
	}
}

func TestLoaderMergesSectionsAndCaches(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "characters.yaml", `
version: "1"
characters:
  - { id: a, name: Alpha, area: Market, rarity: 1, base_generation_rate: 1 }
`)
	write(t, dir, "venues.yaml", `
venues:
  - { id: v, name: Stall, type: Market, base_revenue: 1, max_assistants: 1, unlock_level: 1 }
`)
	write(t, dir, "summon.yaml", `
summon:
  token: Stars
  costs: [1, 2, 3, 4, 5]
`)

	l := NewLoader(dir)
	c1, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "1", c1.Version)
	assert.Equal(t, "Stars", c1.Costs.Name)
	assert.Equal(t, [5]int64{1, 2, 3, 4, 5}, c1.Costs.PerTier)

	c2, err := l.Load()
	require.NoError(t, err)
	assert.Same(t, c1, c2)

	l.Invalidate()
	c3, err := l.Load()
	require.NoError(t, err)
	assert.NotSame(t, c1, c3)
}

func TestFileWatcherFiresOnSectionWrite(t *testing.T) {
	dir := t.TempDir()
	changed := make(chan string, 4)
	fw, err := NewFileWatcher(dir, 10*time.Millisecond, func(p string) {
		select {
		case changed <- p:
		default:
		}
	}, nil)
	require.NoError(t, err)
	fw.Start()
	defer fw.Stop()

	write(t, dir, "notes.txt", "ignored")
	write(t, dir, "venues.yaml", "venues: []")

	select {
	case p := <-changed:
		assert.Equal(t, "venues.yaml", filepath.Base(p))
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification")
	}
	fw.Stop()
}

func write(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}
