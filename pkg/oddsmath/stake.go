package oddsmath

import (
	"fmt"
	"math"
)

// KellyFraction returns the Kelly stake fraction for a bet whose true probability is fair
// and whose price implies marketProb.
//
// Formula: f = p - (1 - p) / b, where b = 1/marketProb - 1 is the net decimal payout
func KellyFraction(fair, marketProb float64) (float64, error) {
	if err := validProbability(fair); err != nil {
		return 0, err
	}
	if err := validProbability(marketProb); err != nil {
		return 0, err
	}

	b := 1.0/marketProb - 1.0
	if b <= 0 {
		return 0, fmt.Errorf("non-positive payout for market probability %v", marketProb)
	}

	return fair - (1.0-fair)/b, nil
}

// Edge returns the expected value percentage of a bet: (fair - market) / market × 100
func Edge(fair, marketProb float64) (float64, error) {
	if err := validProbability(marketProb); err != nil {
		return 0, err
	}
	return (fair - marketProb) / marketProb * 100.0, nil
}

// Confidence maps a reference liquidity limit onto [1, 10] on a log scale between floor
// and ceiling. Limits outside the band are clamped.
func Confidence(limit, floor, ceiling float64) (float64, error) {
	if floor <= 0 || ceiling <= floor {
		return 0, fmt.Errorf("invalid confidence band [%v, %v]", floor, ceiling)
	}

	if limit < floor {
		limit = floor
	} else if limit > ceiling {
		limit = ceiling
	}

	return 1.0 + 9.0*(math.Log(limit/floor)/math.Log(ceiling/floor)), nil
}
