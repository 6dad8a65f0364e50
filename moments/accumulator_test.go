package moments_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/chebtile/moments"
)

func TestNewAccumulator_Validation(t *testing.T) {
	_, err := moments.NewAccumulator[float64](0)
	assert.ErrorIs(t, err, moments.ErrOrder)
}

func TestAccumulator_RunningAverage(t *testing.T) {
	acc, err := moments.NewAccumulator[float64](2)
	require.NoError(t, err)

	require.NoError(t, acc.Update([]float64{1, 10}))
	require.NoError(t, acc.Update([]float64{3, 20}))
	require.NoError(t, acc.Update([]float64{5, 30}))

	got := acc.Moments()
	assert.InDelta(t, 3, got[0], 1e-14)
	assert.InDelta(t, 20, got[1], 1e-14)
	assert.Equal(t, 3, acc.Count())
}

func TestAccumulator_SumAndReset(t *testing.T) {
	acc, err := moments.NewAccumulator[complex128](2)
	require.NoError(t, err)

	require.NoError(t, acc.Sum([]complex128{1, complex(0, 2)}))
	require.NoError(t, acc.Sum([]complex128{2, complex(0, 3)}))
	got := acc.Moments()
	assert.Equal(t, complex128(3), got[0])
	assert.Equal(t, complex(0, 5), got[1])
	assert.Zero(t, acc.Count(), "Sum must not advance the realization count")

	acc.Reset()
	got = acc.Moments()
	assert.Zero(t, got[0])
	assert.Zero(t, got[1])
}

func TestAccumulator_LengthMismatch(t *testing.T) {
	acc, err := moments.NewAccumulator[float64](3)
	require.NoError(t, err)
	assert.ErrorIs(t, acc.Update([]float64{1}), moments.ErrLength)
	assert.ErrorIs(t, acc.Sum([]float64{1, 2}), moments.ErrLength)
}

// Moments returns a copy, not the backing storage.
func TestAccumulator_MomentsIsolated(t *testing.T) {
	acc, err := moments.NewAccumulator[float64](1)
	require.NoError(t, err)
	require.NoError(t, acc.Update([]float64{4}))

	got := acc.Moments()
	got[0] = 99
	assert.Equal(t, 4.0, acc.Moments()[0])
}
