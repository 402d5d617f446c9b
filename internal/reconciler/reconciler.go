package reconciler

import (
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/value-bet-service/internal/models"
)

// Reconciler pairs reference outcomes with retail prices for the same proposition
type Reconciler struct {
	logger zerolog.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		logger: logger.With().Str("component", "reconciler").Logger(),
	}
}

// Reconcile matches every reference event against the retail events and returns one
// candidate per matched outcome. Inputs are not modified. Team totals are never paired.
func (r *Reconciler) Reconcile(reference, retail []models.Event) []models.Candidate {
	candidates := make([]models.Candidate, 0)
	matched := 0

	for _, ref := range reference {
		ret, ok := findEvent(ref, retail)
		if !ok {
			continue
		}
		matched++

		for _, market := range ref.Markets {
			candidates = append(candidates, r.reconcileMarket(ref, market, ret)...)
		}
	}

	r.logger.Debug().
		Int("reference_events", len(reference)).
		Int("retail_events", len(retail)).
		Int("matched_events", matched).
		Int("candidates", len(candidates)).
		Msg("reconciled events")

	return candidates
}

func (r *Reconciler) reconcileMarket(ref models.Event, market models.Market, retail models.Event) []models.Candidate {
	switch market.Kind {
	case models.KindMoneyline:
		return matchMoneyline(ref, market, retail)
	case models.KindHandicap:
		return matchHandicap(ref, market, retail)
	case models.KindTotal:
		return matchTotal(ref, market, retail)
	case models.KindPlayerOverUnder, models.KindPlayerYesNo:
		return matchPlayerProp(ref, market, retail)
	case models.KindTeamTotal:
		return nil
	default:
		r.logger.Debug().Str("kind", string(market.Kind)).Msg("no matcher for market kind")
		return nil
	}
}

// leg describes one directional candidate to build from a matched market pair
type leg struct {
	side        models.Side
	description string
}

// pair builds candidates for the given sides. Each candidate carries its own reference
// price and the reference prices of every other outcome for devigging.
func pair(ref models.Event, refMarket, retailMarket models.Market, legs []leg) []models.Candidate {
	out := make([]models.Candidate, 0, len(legs))
	for _, l := range legs {
		refOutcome, ok := refMarket.Outcome(l.side)
		if !ok {
			continue
		}
		retailOutcome, ok := retailMarket.Outcome(l.side)
		if !ok {
			continue
		}

		opposing := make([]int, 0, len(refMarket.Outcomes)-1)
		for _, o := range refMarket.Outcomes {
			if o.Side != l.side {
				opposing = append(opposing, o.Price)
			}
		}

		out = append(out, newCandidate(ref, refMarket, refOutcome.Price, opposing, retailMarket, retailOutcome, l))
	}
	return out
}

func newCandidate(ref models.Event, refMarket models.Market, price int, opposing []int,
	retailMarket models.Market, retailOutcome models.Outcome, l leg) models.Candidate {
	return models.Candidate{
		League:            ref.League,
		EventID:           ref.ID,
		EventName:         ref.Name,
		Kind:              refMarket.Kind,
		Side:              l.side,
		Description:       l.description,
		ReferencePrice:    price,
		OpposingPrices:    opposing,
		Limit:             refMarket.Limit,
		RetailPrice:       retailOutcome.Price,
		RetailMarketID:    retailMarket.MarketID,
		RetailSelectionID: retailOutcome.SelectionID,
	}
}

func matchMoneyline(ref models.Event, market models.Market, retail models.Event) []models.Candidate {
	threeWay := market.IsThreeWay()

	for _, rm := range retail.Markets {
		if rm.Kind != models.KindMoneyline || rm.IsThreeWay() != threeWay {
			continue
		}

		legs := []leg{
			{side: models.SideHome, description: moneylineDescription(ref.Home, ref.Name)},
			{side: models.SideAway, description: moneylineDescription(ref.Away, ref.Name)},
		}
		if threeWay {
			legs = append(legs, leg{side: models.SideDraw, description: drawDescription(ref.Name)})
		}
		return pair(ref, market, rm, legs)
	}
	return nil
}

func matchHandicap(ref models.Event, market models.Market, retail models.Event) []models.Candidate {
	home, ok := market.Outcome(models.SideHome)
	if !ok {
		return nil
	}

	for _, rm := range retail.Markets {
		if rm.Kind != models.KindHandicap {
			continue
		}
		retailHome, ok := rm.Outcome(models.SideHome)
		if !ok || retailHome.Line != home.Line {
			continue
		}

		return pair(ref, market, rm, []leg{
			{side: models.SideHome, description: handicapDescription(ref.Home, home.Line, ref.Name)},
			{side: models.SideAway, description: handicapDescription(ref.Away, -home.Line, ref.Name)},
		})
	}
	return nil
}

func matchTotal(ref models.Event, market models.Market, retail models.Event) []models.Candidate {
	for _, rm := range retail.Markets {
		if rm.Kind != models.KindTotal || rm.Threshold != market.Threshold {
			continue
		}

		return pair(ref, market, rm, []leg{
			{side: models.SideOver, description: totalDescription(models.SideOver, market.Threshold, ref.Name)},
			{side: models.SideUnder, description: totalDescription(models.SideUnder, market.Threshold, ref.Name)},
		})
	}
	return nil
}

// matchPlayerProp pairs the over (or yes) side of a reference prop with the player's
// runner on the retail market whose token equals the rendered template.
func matchPlayerProp(ref models.Event, market models.Market, retail models.Event) []models.Candidate {
	template, ok := market.Category.Template()
	if !ok || market.Player == "" {
		return nil
	}

	var (
		count      int
		token      string
		side       models.Side
		opposeSide models.Side
	)
	switch market.Kind {
	case models.KindPlayerOverUnder:
		count = market.PropCount()
		side, opposeSide = models.SideOver, models.SideUnder
	case models.KindPlayerYesNo:
		if template.Templated() {
			return nil
		}
		count = 1
		side, opposeSide = models.SideYes, models.SideNo
	}

	token, ok = template.RetailToken(count)
	if !ok {
		return nil
	}

	refOutcome, ok := market.Outcome(side)
	if !ok {
		return nil
	}
	opposing, ok := market.Outcome(opposeSide)
	if !ok {
		return nil
	}

	displayCount := 0
	if template.Templated() {
		displayCount = count
	}

	for _, rm := range retail.Markets {
		if !rm.Kind.IsPlayerProp() || rm.Token != token {
			continue
		}
		runner, ok := rm.Runner(market.Player)
		if !ok {
			continue
		}

		l := leg{side: side, description: propDescription(market.Player, market.Category, displayCount, ref.Name)}
		return []models.Candidate{
			newCandidate(ref, market, refOutcome.Price, []int{opposing.Price}, rm, runner, l),
		}
	}
	return nil
}
