package gacha

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/idle-venues/internal/catalog"
	"github.com/xtding233/idle-venues/internal/state"
	"github.com/xtding233/idle-venues/internal/token"
)

// scripted replays fixed samples in order, then repeats the last one.
type scripted struct {
	xs []float64
	i  int
}

func (s *scripted) Float64() float64 {
	if s.i >= len(s.xs) {
		return s.xs[len(s.xs)-1]
	}
	f := s.xs[s.i]
	s.i++
	return f
}

func script(xs ...float64) *scripted { return &scripted{xs: xs} }

func testCatalog() *catalog.Catalog {
	return catalog.New(
		[]catalog.Character{
			{ID: "a", Name: "A", Rarity: 1, Area: catalog.Market, BaseRate: 1, Unlock: catalog.UnlockRequirement{Kind: catalog.UnlockStarter}},
			{ID: "b", Name: "B", Rarity: 1, Area: catalog.Market, BaseRate: 1, Unlock: catalog.UnlockRequirement{Kind: catalog.UnlockSummon}},
			{ID: "c", Name: "C", Rarity: 1, Area: catalog.Market, BaseRate: 1, Unlock: catalog.UnlockRequirement{Kind: catalog.UnlockLevel, Value: 3}},
			{ID: "h", Name: "H", Rarity: 2, Area: catalog.Commemoration, BaseRate: 2, Unlock: catalog.UnlockRequirement{Kind: catalog.UnlockSummon}},
			{ID: "r", Name: "R", Rarity: 3, Area: catalog.Entertainment, BaseRate: 4, Unlock: catalog.UnlockRequirement{Kind: catalog.UnlockRevenue, Value: 5000}},
		},
		[]catalog.Venue{{ID: "stall", Name: "Stall", Type: catalog.Market, MaxAssistants: 1, UnlockLevel: 1}},
		nil,
		token.DefaultSchedule(),
	)
}

func maxed(s *state.GameState, ids ...string) {
	for _, id := range ids {
		s.Unlocked = append(s.Unlocked, state.UnlockedCharacter{
			CharacterID:    id,
			DuplicateLevel: 1 + state.MaxUpgrades,
			Upgrades:       state.MaxUpgrades,
		})
	}
}

func TestPick(t *testing.T) {
	_, err := Pick(0, script(0.5))
	assert.ErrorIs(t, err, ErrEmptyPool)

	for _, bad := range []float64{-0.1, 1, 2} {
		_, err = Pick(3, script(bad))
		assert.ErrorIs(t, err, ErrBadSample, "sample %v", bad)
	}

	i, err := Pick(3, script(0.9999999))
	require.NoError(t, err)
	assert.Equal(t, 2, i)
	i, err = Pick(3, script(0))
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	i, err = Pick(4, nil)
	require.NoError(t, err)
	assert.True(t, i >= 0 && i < 4)
}

func TestPickIsRoughlyUniform(t *testing.T) {
	const n, draws = 4, 40000
	rng := NewSeededRNG(7)
	counts := make([]int, n)
	for k := 0; k < draws; k++ {
		i, err := Pick(n, rng)
		require.NoError(t, err)
		counts[i]++
	}
	for _, c := range counts {
		assert.InDelta(t, draws/n, c, draws/n*0.05)
	}
}

func TestSeededRNGIsReplicable(t *testing.T) {
	a, b := NewSeededRNG(42), NewSeededRNG(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestSummonNewThenDuplicate(t *testing.T) {
	cat := testCatalog()
	s := state.New(time.UnixMilli(0), 1000)

	out, err := Summon(s, cat, 1, script(0))
	require.NoError(t, err)
	assert.True(t, out.New)
	assert.Equal(t, "a", out.CharacterID)
	assert.Equal(t, int64(100), out.Cost)
	assert.Equal(t, int64(900), s.Gems)
	assert.Equal(t, 1, s.Record("a").DuplicateLevel)

	out, err = Summon(s, cat, 1, script(0))
	require.NoError(t, err)
	assert.False(t, out.New)
	assert.True(t, out.Duplicate.Banked)
	assert.Equal(t, int64(800), s.Gems)
	assert.Equal(t, 1, s.Record("a").BankedDuplicates)
	assert.Equal(t, 1, s.Record("a").DuplicateLevel)
	require.NoError(t, s.CheckInvariants(cat))
}

func TestSummonDuplicateOfMaxedPaysGold(t *testing.T) {
	cat := testCatalog()
	s := state.New(time.UnixMilli(0), 1000)
	maxed(s, "a")

	out, err := Summon(s, cat, 1, script(0))
	require.NoError(t, err)
	assert.False(t, out.New)
	assert.False(t, out.Duplicate.Banked)
	assert.Equal(t, int64(50), out.Duplicate.Reward)
	assert.Equal(t, int64(50), s.Gold)
}

func TestSummonPreconditionOrder(t *testing.T) {
	cat := testCatalog()

	// insufficient currency wins over rarity lock
	s := state.New(time.UnixMilli(0), 150)
	_, err := Summon(s, cat, 2, script(0))
	assert.ErrorIs(t, err, ErrInsufficientCurrency)

	// rarity locked: A and B are eligible at tier 1 and not maxed
	s = state.New(time.UnixMilli(0), 1000)
	before := s.Clone()
	_, err = Summon(s, cat, 2, script(0))
	assert.ErrorIs(t, err, ErrRarityLocked)
	assert.Equal(t, before, s)

	// C is level-gated and does not block tier 2 at level 1
	maxed(s, "a", "b")
	out, err := Summon(s, cat, 2, script(0))
	require.NoError(t, err)
	assert.Equal(t, "h", out.CharacterID)

	// at level 3 C joins the pool and blocks tier 2 again
	s.Level = 3
	_, err = Summon(s, cat, 2, script(0))
	assert.ErrorIs(t, err, ErrRarityLocked)

	// tier 3 is open once tiers 1 and 2 are maxed, but R needs 5000 earnings
	s = state.New(time.UnixMilli(0), 1000)
	maxed(s, "a", "b", "h")
	before = s.Clone()
	_, err = Summon(s, cat, 3, script(0))
	assert.ErrorIs(t, err, ErrNoEligibleCharacters)
	assert.Equal(t, before, s)

	s.CumulativeEarnings = 5000
	out, err = Summon(s, cat, 3, script(0))
	require.NoError(t, err)
	assert.Equal(t, "r", out.CharacterID)
	assert.Equal(t, int64(700), s.Gems)
}

func TestSummonInvalidTier(t *testing.T) {
	s := state.New(time.UnixMilli(0), 1000)
	for _, tier := range []int{0, 6, -1} {
		_, err := Summon(s, testCatalog(), tier, script(0))
		assert.ErrorIs(t, err, token.ErrInvalidTier)
	}
	assert.Equal(t, int64(1000), s.Gems)
}

func TestSummonPoolFollowsUnlockGates(t *testing.T) {
	cat := testCatalog()
	s := state.New(time.UnixMilli(0), 1000)
	assert.Len(t, Eligible(s, cat, 1), 2)

	out, err := Summon(s, cat, 1, script(0.99))
	require.NoError(t, err)
	assert.Equal(t, "b", out.CharacterID)

	s.Level = 3
	assert.Len(t, Eligible(s, cat, 1), 3)
	out, err = Summon(s, cat, 1, script(0.99))
	require.NoError(t, err)
	assert.Equal(t, "c", out.CharacterID)
}

func TestSummonBadRandomSourceLeavesStateUnchanged(t *testing.T) {
	s := state.New(time.UnixMilli(0), 1000)
	before := s.Clone()
	_, err := Summon(s, testCatalog(), 1, script(1.5))
	assert.ErrorIs(t, err, ErrBadSample)
	assert.Equal(t, before, s)
}

func TestRunMonteCarlo(t *testing.T) {
	st, err := RunMonteCarlo(SimParams{PoolSize: 1, Cost: 100}, GoalCollectAll, 10, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, st.Mean)
	assert.Equal(t, 100.0, st.MeanCost)

	st, err = RunMonteCarlo(SimParams{PoolSize: 1, Cost: 100}, GoalMaxAll, 10, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, float64(copiesToMax), st.Mean)
	assert.Zero(t, st.StdDev)

	st, err = RunMonteCarlo(SimParams{PoolSize: 2, Owned: []int{copiesToMax, copiesToMax}}, GoalMaxAll, 5, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, st.Mean)

	rng := NewSeededRNG(1)
	st, err = RunMonteCarlo(SimParams{PoolSize: 3, Cost: 100}, GoalMaxAll, 500, nil, rng)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, st.P50, float64(3*copiesToMax))
	assert.LessOrEqual(t, st.P50, st.P90)
	assert.LessOrEqual(t, st.P90, st.P99)

	st, err = RunMonteCarlo(SimParams{PoolSize: 3}, GoalFixedBudget, 50, &SimBudget{NumSummons: 2}, rng)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, st.Mean, 1.0)
	assert.LessOrEqual(t, st.Mean, 2.0)
	assert.Zero(t, st.MeanCost)

	_, err = RunMonteCarlo(SimParams{}, GoalMaxAll, 1, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidSim)
	_, err = RunMonteCarlo(SimParams{PoolSize: 1}, "nope", 1, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidSim)

	st, err = RunMonteCarlo(SimParams{}, GoalMaxAll, 0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)
}

func TestParamsFor(t *testing.T) {
	cat := testCatalog()
	s := state.New(time.UnixMilli(0), 1000)
	s.Unlocked = append(s.Unlocked, state.UnlockedCharacter{CharacterID: "b", DuplicateLevel: 3, Upgrades: 2, BankedDuplicates: 1})

	p, err := ParamsFor(s, cat, 1)
	require.NoError(t, err)
	assert.Equal(t, SimParams{PoolSize: 2, Owned: []int{0, 4}, Cost: 100}, p)

	_, err = ParamsFor(s, cat, 9)
	assert.ErrorIs(t, err, token.ErrInvalidTier)
}

func TestCalcStats(t *testing.T) {
	st := calcStats([]int{1, 2, 3, 4})
	assert.InDelta(t, 2.5, st.Mean, 1e-9)
	assert.InDelta(t, 1.25, st.Var, 1e-9)
	assert.InDelta(t, 2.5, st.P50, 1e-9)
	assert.Equal(t, Stats{}, calcStats(nil))
}
