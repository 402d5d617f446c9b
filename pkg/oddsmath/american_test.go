package oddsmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAmericanToProbability tests known conversions
func TestAmericanToProbability(t *testing.T) {
	tests := []struct {
		name string
		odds int
		want float64
	}{
		{"even money positive", 100, 0.5},
		{"even money negative", -100, 0.5},
		{"favourite", -150, 0.6},
		{"underdog", 150, 0.4},
		{"heavy favourite", -400, 0.8},
		{"longshot", 900, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AmericanToProbability(tt.odds)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

// TestAmericanToProbability_Bounds tests that every price maps inside (0, 1)
// and that each sign is monotonically decreasing in odds
func TestAmericanToProbability_Bounds(t *testing.T) {
	prevPositive := 1.0
	for odds := 100; odds <= 20000; odds += 5 {
		p, err := AmericanToProbability(odds)
		require.NoError(t, err)
		assert.Greater(t, p, 0.0)
		assert.Less(t, p, 1.0)
		assert.Less(t, p, prevPositive, "odds %d", odds)
		prevPositive = p
	}

	prevNegative := 1.0
	for odds := -20000; odds <= -100; odds += 5 {
		p, err := AmericanToProbability(odds)
		require.NoError(t, err)
		assert.Greater(t, p, 0.0)
		assert.Less(t, p, 1.0)
		assert.Less(t, p, prevNegative, "odds %d", odds)
		prevNegative = p
	}
}

// TestAmericanToProbability_Zero tests that zero is rejected
func TestAmericanToProbability_Zero(t *testing.T) {
	_, err := AmericanToProbability(0)
	assert.ErrorIs(t, err, ErrInvalidOdds)
}

// TestAmericanToDecimal tests decimal conversion
func TestAmericanToDecimal(t *testing.T) {
	got, err := AmericanToDecimal(150)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, got, 1e-12)

	got, err = AmericanToDecimal(-200)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, got, 1e-12)

	_, err = AmericanToDecimal(0)
	assert.ErrorIs(t, err, ErrInvalidOdds)
}
