package fanduel

import (
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/value-bet-service/internal/models"
)

// Normalizer converts sportsbook pages into canonical events
type Normalizer struct {
	logger zerolog.Logger
}

// NewNormalizer creates a new retail normalizer
func NewNormalizer(logger zerolog.Logger) *Normalizer {
	return &Normalizer{
		logger: logger.With().Str("component", "fanduel_normalizer").Logger(),
	}
}

// Normalize builds canonical events for one league. Events whose name is not a
// two-team fixture are dropped, as are unpriced or unrecognized markets.
func (n *Normalizer) Normalize(page *Page, info models.LeagueInfo) []models.Event {
	if page == nil || len(page.Attachments.Events) == 0 || len(page.Attachments.Markets) == 0 {
		return []models.Event{}
	}

	events := make([]models.Event, 0)
	index := make(map[int64]int)

	for _, id := range n.eventIDs(page, info) {
		if _, dup := index[id]; dup {
			continue
		}
		raw, ok := page.Attachments.Events[strconv.FormatInt(id, 10)]
		if !ok {
			continue
		}
		home, away, ok := models.HomeAway(raw.Name)
		if !ok {
			continue
		}
		start, _ := time.Parse(time.RFC3339, raw.OpenDate)

		index[id] = len(events)
		events = append(events, models.Event{
			ID:        strconv.FormatInt(id, 10),
			League:    info.League,
			Name:      raw.Name,
			Home:      home,
			Away:      away,
			StartTime: start,
			Markets:   []models.Market{},
		})
	}

	keys := make([]string, 0, len(page.Attachments.Markets))
	for k := range page.Attachments.Markets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	unrecognized := 0
	for _, k := range keys {
		raw := page.Attachments.Markets[k]
		i, ok := index[raw.EventID]
		if !ok {
			continue
		}

		c := classify(raw.MarketType)
		if c.class == classUnrecognized {
			unrecognized++
			continue
		}

		market, ok := buildMarket(raw, c, events[i])
		if !ok {
			n.logger.Debug().
				Str("market_id", raw.MarketID).
				Str("market_type", raw.MarketType).
				Msg("skipping malformed market")
			continue
		}
		events[i].Markets = append(events[i].Markets, market)
	}

	n.logger.Debug().
		Str("league", string(info.League)).
		Int("events", len(events)).
		Int("unrecognized_markets", unrecognized).
		Msg("normalized retail page")

	return events
}

// eventIDs lists candidate events in page order. Coupon pages list them in the layout;
// otherwise every attached event is considered, ordered by id.
func (n *Normalizer) eventIDs(page *Page, info models.LeagueInfo) []int64 {
	var ids []int64

	if info.FanDuel.CouponID != "" {
		coupon, ok := page.Layout.Coupons[info.FanDuel.CouponID]
		if !ok {
			n.logger.Debug().Str("coupon_id", info.FanDuel.CouponID).Msg("coupon missing from layout")
			return nil
		}
		for _, display := range coupon.Display {
			for _, row := range display.Rows {
				if row.EventID != 0 {
					ids = append(ids, row.EventID)
				}
			}
		}
		return ids
	}

	for _, e := range page.Attachments.Events {
		ids = append(ids, e.EventID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func buildMarket(raw Market, c classified, event models.Event) (models.Market, bool) {
	// the betslip keys on the external id; the internal one is a fallback
	marketID := raw.ExternalMarketID
	if marketID == "" {
		marketID = raw.MarketID
	}
	market := models.Market{
		Token:    raw.MarketType,
		MarketID: marketID,
	}

	switch c.class {
	case classMoneyline, classHandicap:
		if len(raw.Runners) != 2 {
			return models.Market{}, false
		}
		// "Away @ Home" pages list the away runner first; a runner named after the home
		// team overrides the page convention
		homeIdx := 0
		if event.Style() == models.NameStyleAwayAtHome {
			homeIdx = 1
		}
		switch event.Home {
		case raw.Runners[0].RunnerName:
			homeIdx = 0
		case raw.Runners[1].RunnerName:
			homeIdx = 1
		}
		home, okHome := outcome(raw.Runners[homeIdx], models.SideHome)
		away, okAway := outcome(raw.Runners[1-homeIdx], models.SideAway)
		if !okHome || !okAway {
			return models.Market{}, false
		}
		market.Kind = models.KindMoneyline
		if c.class == classHandicap {
			market.Kind = models.KindHandicap
		}
		market.Outcomes = []models.Outcome{home, away}

	case classWinDrawWin:
		if len(raw.Runners) != 3 {
			return models.Market{}, false
		}
		home, okHome := outcome(raw.Runners[0], models.SideHome)
		draw, okDraw := outcome(raw.Runners[1], models.SideDraw)
		away, okAway := outcome(raw.Runners[2], models.SideAway)
		if !okHome || !okDraw || !okAway {
			return models.Market{}, false
		}
		market.Kind = models.KindMoneyline
		market.Outcomes = []models.Outcome{home, away, draw}

	case classTotal:
		if len(raw.Runners) != 2 {
			return models.Market{}, false
		}
		over, okOver := outcome(raw.Runners[0], models.SideOver)
		under, okUnder := outcome(raw.Runners[1], models.SideUnder)
		if !okOver || !okUnder {
			return models.Market{}, false
		}
		market.Kind = models.KindTotal
		market.Threshold = raw.Runners[0].Handicap
		market.Outcomes = []models.Outcome{over, under}

	case classPlayerProp:
		template, _ := c.category.Template()
		market.Kind = models.KindPlayerOverUnder
		if template.YesNo {
			market.Kind = models.KindPlayerYesNo
		}
		market.Category = c.category
		if c.count > 0 {
			// "N+" is the same proposition as over N-0.5
			market.Threshold = float64(c.count) - 0.5
		}
		for _, r := range raw.Runners {
			o, ok := outcome(r, models.SidePlayer)
			if !ok {
				continue
			}
			o.Participant = r.RunnerName
			market.Outcomes = append(market.Outcomes, o)
		}
		return market, len(market.Outcomes) > 0
	}

	if err := market.Validate(); err != nil {
		return models.Market{}, false
	}
	return market, true
}

func outcome(r Runner, side models.Side) (models.Outcome, bool) {
	price, ok := r.Price()
	if !ok {
		return models.Outcome{}, false
	}
	return models.Outcome{
		Side:        side,
		Price:       price,
		Line:        r.Handicap,
		SelectionID: strconv.FormatInt(r.SelectionID, 10),
	}, true
}
