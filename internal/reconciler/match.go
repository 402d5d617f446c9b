package reconciler

import (
	"strings"

	"github.com/cypherlabdev/value-bet-service/internal/models"
)

// EventsMatch reports whether two fixture names describe the same game. Team tokens are
// compared by position, and each pair matches when either token contains the other.
// Comparison is case sensitive.
func EventsMatch(a, b string) bool {
	a1, a2, _, ok := models.SplitEventName(a)
	if !ok {
		return false
	}
	b1, b2, _, ok := models.SplitEventName(b)
	if !ok {
		return false
	}
	return tokensMatch(a1, b1) && tokensMatch(a2, b2)
}

func tokensMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// findEvent returns the first retail event matching the reference event
func findEvent(ref models.Event, retail []models.Event) (models.Event, bool) {
	for _, e := range retail {
		if EventsMatch(ref.Name, e.Name) {
			return e, true
		}
	}
	return models.Event{}, false
}
