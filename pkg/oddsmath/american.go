package oddsmath

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidOdds is returned for American odds that do not encode a price
	ErrInvalidOdds = errors.New("invalid American odds")
	// ErrInvalidProbability is returned for probabilities outside (0, 1)
	ErrInvalidProbability = errors.New("probability must be between 0 and 1")
)

// AmericanToProbability converts American odds to the implied probability
// +150 → 100/250 = 0.40
// -150 → 150/250 = 0.60
func AmericanToProbability(odds int) (float64, error) {
	if odds == 0 {
		return 0, fmt.Errorf("%w: 0", ErrInvalidOdds)
	}

	if odds > 0 {
		return 100.0 / (float64(odds) + 100.0), nil
	}

	return float64(-odds) / (float64(-odds) + 100.0), nil
}

// AmericanToDecimal converts American odds to decimal odds
// American +150 → Decimal 2.50
// American -150 → Decimal 1.67
func AmericanToDecimal(odds int) (float64, error) {
	if odds == 0 {
		return 0, fmt.Errorf("%w: 0", ErrInvalidOdds)
	}

	if odds > 0 {
		return float64(odds)/100.0 + 1.0, nil
	}

	return 100.0/float64(-odds) + 1.0, nil
}

func validProbability(p float64) error {
	if p <= 0 || p >= 1 {
		return fmt.Errorf("%w: %v", ErrInvalidProbability, p)
	}
	return nil
}
