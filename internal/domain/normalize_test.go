package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_WholeDegrees(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"zero", 0, 0},
		{"ten east", 360000, 10},
		{"fifty south", -1800000, -50},
		{"179 degrees", 179 * 36000, 179},
		{"minus 180", -180 * 36000, -180},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalize_SubSecondOffset(t *testing.T) {
	got, err := Normalize(360001)
	require.NoError(t, err)
	assert.InDelta(t, 10+0.1/3600.0, got, 1e-12)

	got, err = Normalize(-360002)
	require.NoError(t, err)
	assert.InDelta(t, -(10 + 0.2/3600.0), got, 1e-12)
}

func TestNormalize_Failures(t *testing.T) {
	tests := []struct {
		name  string
		input float64
	}{
		// 180 is only accepted with a minus sign.
		{"plus 180", 180 * 36000},
		// Degrees round to 0 but minutes keep a fraction, which cannot be an
		// integer field once seconds follow.
		{"plain decimal degrees", 37.7749},
		{"fractional degrees after scaling", 18000},
		// Minutes and seconds both round up to 60.
		{"rounds to sixty", 360000 - 0.01},
		{"nan", math.NaN()},
		{"infinite", math.Inf(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestNormalize_ReachesFixedPoint(t *testing.T) {
	// Each application divides by the 36000 scale again, so defined chains
	// shrink to 0:0:0, which normalizes to itself.
	tests := []struct {
		name  string
		input float64
		chain []float64 // successive results, ending at the fixed point
	}{
		{"zero", 0, []float64{0}},
		{"one tenth arcsecond", 1, []float64{0.1 / 3600, 0}},
		{"negative tenth arcsecond", -1, []float64{-0.1 / 3600, 0, 0}},
		{"two tenths arcsecond", 2, []float64{0.2 / 3600, 0}},
		{"one degree", 36000, []float64{1, 0.1 / 3600, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.input
			for i, want := range tt.chain {
				got, err := Normalize(v)
				require.NoError(t, err, "step %d", i+1)
				assert.InDelta(t, want, got, 1e-15, "step %d", i+1)
				v = got
			}
			again, err := Normalize(v)
			require.NoError(t, err)
			assert.Equal(t, v, again)
		})
	}
}

func TestNormalize_ChainLeavesDomain(t *testing.T) {
	// The first result is valid but too small to survive another pass:
	// minutes round to a fraction once it is scaled down again.
	tests := []struct {
		name  string
		input float64
		first float64
	}{
		{"ten degrees", 360000, 10},
		{"ten degrees and a tenth arcsecond", 360001, 10 + 0.1/3600},
		{"minus 180", -6480000, -180},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.first, first, 1e-12)

			_, err = Normalize(first)
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestNormalizerFunc(t *testing.T) {
	var calls int
	n := NormalizerFunc(func(v float64) (float64, error) {
		calls++
		return v * 2, nil
	})

	got, err := n.Normalize(4)
	require.NoError(t, err)
	assert.Equal(t, 8.0, got)
	assert.Equal(t, 1, calls)

	got, err = DefaultNormalizer.Normalize(360000)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got)
}
