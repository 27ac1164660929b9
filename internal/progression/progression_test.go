package progression

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/idle-venues/internal/state"
)

// referenceLevel recomputes the level with float powers, valid while 1.5^(n-1) is exact.
func referenceLevel(total int64) int {
	level := 1
	remaining := total
	need := int64(math.Floor(1000 * math.Pow(1.5, float64(level-1))))
	for remaining >= need {
		remaining -= need
		level++
		need = int64(math.Floor(1000 * math.Pow(1.5, float64(level-1))))
	}
	return level
}

func TestRequirementFor(t *testing.T) {
	assert.Equal(t, int64(1000), RequirementFor(1))
	assert.Equal(t, int64(1500), RequirementFor(2))
	assert.Equal(t, int64(2250), RequirementFor(3))
	assert.Equal(t, int64(3375), RequirementFor(4))
	assert.Equal(t, int64(5062), RequirementFor(5)) // floor(5062.5)
	assert.Equal(t, int64(1000), RequirementFor(0))
	assert.Equal(t, int64(math.MaxInt64), RequirementFor(500))

	for n := 1; n <= 30; n++ {
		want := int64(math.Floor(1000 * math.Pow(1.5, float64(n-1))))
		assert.Equal(t, want, RequirementFor(n), "level %d", n)
	}
}

func TestLevelForEarningsMatchesReference(t *testing.T) {
	for _, e := range []int64{0, 1, 999, 1000, 1001, 2499, 2500, 4749, 4750, 8125, 1_000_000, 123_456_789} {
		assert.Equal(t, referenceLevel(e), LevelForEarnings(e), "earnings %d", e)
	}
	assert.Equal(t, 1, LevelForEarnings(999))
	assert.Equal(t, 2, LevelForEarnings(1000))
	assert.Equal(t, 3, LevelForEarnings(2500))
}

func TestLevelForEarningsMonotonic(t *testing.T) {
	prev := LevelForEarnings(0)
	for e := int64(0); e < 200_000; e += 37 {
		l := LevelForEarnings(e)
		require.GreaterOrEqual(t, l, prev, "earnings %d", e)
		prev = l
	}
	assert.Greater(t, LevelForEarnings(math.MaxInt64), 50)
}

func TestProgressFor(t *testing.T) {
	p := ProgressFor(0)
	assert.Equal(t, Progress{Level: 1, Into: 0, Required: 1000, Percent: 0}, p)

	p = ProgressFor(1750)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, int64(750), p.Into)
	assert.Equal(t, int64(1500), p.Required)
	assert.InDelta(t, 50.0, p.Percent, 1e-9)
}

func TestApplyGrantsBonusPerLevel(t *testing.T) {
	s := state.New(time.Now(), 0)
	s.CumulativeEarnings = 4750 // exactly level 4

	gained := Apply(s)
	assert.Equal(t, []int{2, 3, 4}, gained)
	assert.Equal(t, 4, s.Level)
	assert.Equal(t, int64(3*LevelUpBonus), s.Gems)

	assert.Empty(t, Apply(s))
	assert.Equal(t, int64(3*LevelUpBonus), s.Gems)
}

func TestApplySingleCrossing(t *testing.T) {
	s := state.New(time.Now(), 1000)
	s.CumulativeEarnings = 900
	require.Empty(t, Apply(s))

	s.CumulativeEarnings = 1100
	assert.Equal(t, []int{2}, Apply(s))
	assert.Equal(t, int64(1500), s.Gems)

	s.CumulativeEarnings = 1200
	assert.Empty(t, Apply(s))
	assert.Equal(t, int64(1500), s.Gems)
}
