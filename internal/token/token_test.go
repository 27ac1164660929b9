package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCostForTier(t *testing.T) {
	s := DefaultSchedule()
	for tier := 1; tier <= MaxTier; tier++ {
		c, err := s.CostForTier(tier)
		require.NoError(t, err)
		assert.Equal(t, int64(tier*100), c)
	}

	_, err := s.CostForTier(0)
	assert.ErrorIs(t, err, ErrInvalidTier)
	_, err = s.CostForTier(6)
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestCostForSummons(t *testing.T) {
	s := DefaultSchedule()

	c, err := s.CostForSummons(3, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), c)

	c, err = s.CostForSummons(3, 0)
	require.NoError(t, err)
	assert.Zero(t, c)

	_, err = s.CostForSummons(9, 1)
	assert.ErrorIs(t, err, ErrInvalidTier)
}
