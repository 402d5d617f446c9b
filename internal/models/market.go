package models

import "fmt"

// MarketKind classifies a priced proposition
type MarketKind string

const (
	KindMoneyline       MarketKind = "moneyline"
	KindHandicap        MarketKind = "handicap"
	KindTotal           MarketKind = "total"
	KindPlayerOverUnder MarketKind = "player_prop_over_under"
	KindPlayerYesNo     MarketKind = "player_prop_yes_no"
	KindTeamTotal       MarketKind = "team_total"
)

// IsPlayerProp reports whether the kind is a player proposition
func (k MarketKind) IsPlayerProp() bool {
	return k == KindPlayerOverUnder || k == KindPlayerYesNo
}

// Side names one outcome of a market
type Side string

const (
	SideHome  Side = "home"
	SideAway  Side = "away"
	SideDraw  Side = "draw"
	SideOver  Side = "over"
	SideUnder Side = "under"
	SideYes   Side = "yes"
	SideNo    Side = "no"
	// SidePlayer marks a retail prop runner; the player is in Outcome.Participant
	SidePlayer Side = "player"
)

// Outcome is one side of a market
type Outcome struct {
	Side        Side    `json:"side"`
	Participant string  `json:"participant,omitempty"`
	Price       int     `json:"price"` // American odds
	Line        float64 `json:"line,omitempty"`
	SelectionID string  `json:"selection_id,omitempty"`
}

// Market is one priced proposition attached to an event
type Market struct {
	Kind MarketKind `json:"kind"`
	// Token is the provider's own market type string (retail) or market key (reference)
	Token    string `json:"token,omitempty"`
	MarketID string `json:"market_id,omitempty"`
	// Threshold is the total line, team-total line, or player-prop threshold
	Threshold float64      `json:"threshold,omitempty"`
	Team      Side         `json:"team,omitempty"`
	Player    string       `json:"player,omitempty"`
	Category  StatCategory `json:"category,omitempty"`
	Outcomes  []Outcome    `json:"outcomes"`
	// Limit is the reference book's maximum stake, used as a confidence proxy
	Limit float64 `json:"limit,omitempty"`
}

// Outcome returns the outcome on the given side
func (m Market) Outcome(side Side) (Outcome, bool) {
	for _, o := range m.Outcomes {
		if o.Side == side {
			return o, true
		}
	}
	return Outcome{}, false
}

// Runner returns the retail prop selection for a player
func (m Market) Runner(player string) (Outcome, bool) {
	for _, o := range m.Outcomes {
		if o.Participant == player {
			return o, true
		}
	}
	return Outcome{}, false
}

// IsThreeWay reports whether the market carries a draw outcome
func (m Market) IsThreeWay() bool {
	_, ok := m.Outcome(SideDraw)
	return ok && len(m.Outcomes) == 3
}

// PropCount returns the integer "N+" count for a player over/under threshold
func (m Market) PropCount() int {
	return PropCount(m.Threshold)
}

// Validate checks the outcome-count invariant for game and reference markets
func (m Market) Validate() error {
	switch len(m.Outcomes) {
	case 2:
		return nil
	case 3:
		if m.Kind != KindMoneyline {
			return fmt.Errorf("%s market cannot have 3 outcomes", m.Kind)
		}
		for _, side := range []Side{SideHome, SideAway, SideDraw} {
			if _, ok := m.Outcome(side); !ok {
				return fmt.Errorf("3-way moneyline missing %s outcome", side)
			}
		}
		return nil
	default:
		return fmt.Errorf("%s market has %d outcomes, want 2 or 3", m.Kind, len(m.Outcomes))
	}
}
