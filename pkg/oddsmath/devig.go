package oddsmath

import (
	"fmt"
	"math"
)

// Method selects how the reference book's margin is removed
type Method string

const (
	// MethodPower raises every probability to a common exponent until they sum to at most 1.
	// Vig is modelled as suppression of extremity, so favourites lose less than longshots.
	MethodPower Method = "power"
	// MethodMultiplicative rescales every probability proportionally so they sum to 1
	MethodMultiplicative Method = "multiplicative"
)

const (
	// PowerStep is the exponent increment of the power-method search
	PowerStep = 0.005
	// maxPowerExponent bounds the search; real markets converge within a few dozen steps
	maxPowerExponent = 50.0
	// sumTolerance absorbs float rounding when a market is already vig-free
	sumTolerance = 1e-12
)

// ParseMethod converts a configuration string to a Method
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodPower, MethodMultiplicative:
		return Method(s), nil
	case "":
		return MethodPower, nil
	default:
		return "", fmt.Errorf("unknown devig method %q", s)
	}
}

// DevigTwoWay returns the fair probability of outcome a in a two-outcome market
func DevigTwoWay(probA, probB float64, method Method) (float64, error) {
	return devig(method, probA, probB)
}

// DevigThreeWay returns the fair probability of outcome a in a three-outcome market
// (home/away/draw). The order of b and c does not matter.
func DevigThreeWay(probA, probB, probC float64, method Method) (float64, error) {
	return devig(method, probA, probB, probC)
}

// Devig removes the margin from a full outcome set and returns the fair probability of
// the first element. Two and three outcome markets are supported.
func Devig(method Method, probs ...float64) (float64, error) {
	return devig(method, probs...)
}

func devig(method Method, probs ...float64) (float64, error) {
	if len(probs) < 2 || len(probs) > 3 {
		return 0, fmt.Errorf("devig needs 2 or 3 outcomes, got %d", len(probs))
	}
	for _, p := range probs {
		if err := validProbability(p); err != nil {
			return 0, err
		}
	}

	switch method {
	case MethodMultiplicative:
		return multiplicative(probs), nil
	case MethodPower, "":
		return power(probs)
	default:
		return 0, fmt.Errorf("unknown devig method %q", method)
	}
}

// multiplicative: fair_a = p_a / Σp
func multiplicative(probs []float64) float64 {
	total := 0.0
	for _, p := range probs {
		total += p
	}
	return probs[0] / total
}

// power finds the smallest p ≥ 1 on a PowerStep grid such that Σ prob^p ≤ 1
// and returns probs[0]^p.
func power(probs []float64) (float64, error) {
	for step := 0; ; step++ {
		exp := 1.0 + float64(step)*PowerStep
		if exp > maxPowerExponent {
			return 0, fmt.Errorf("power devig did not converge below exponent %v", maxPowerExponent)
		}

		total := 0.0
		for _, p := range probs {
			total += math.Pow(p, exp)
		}
		if total <= 1.0+sumTolerance {
			return math.Pow(probs[0], exp), nil
		}
	}
}

// Overround returns Σp - 1, the margin embedded in a set of implied probabilities
func Overround(probs ...float64) float64 {
	total := 0.0
	for _, p := range probs {
		total += p
	}
	return total - 1.0
}
