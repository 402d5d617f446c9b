package pinnacle

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/value-bet-service/internal/models"
)

// Normalizer converts Arcadia snapshots into canonical events
type Normalizer struct {
	logger zerolog.Logger
}

// NewNormalizer creates a new reference normalizer
func NewNormalizer(logger zerolog.Logger) *Normalizer {
	return &Normalizer{
		logger: logger.With().Str("component", "pinnacle_normalizer").Logger(),
	}
}

// specialRef is a special matchup registered against its parent fixture
type specialRef struct {
	id          int64
	parentID    int64
	player      string
	category    models.StatCategory
	description string
}

// Normalize builds canonical events for one league. A nil snapshot or one missing
// either section yields no events. The snapshot is never mutated.
func (n *Normalizer) Normalize(snap *Snapshot, info models.LeagueInfo) []models.Event {
	if snap == nil || len(snap.Matchups) == 0 || len(snap.Markets) == 0 {
		return []models.Event{}
	}

	events := make([]models.Event, 0, len(snap.Matchups))
	index := make(map[int64]int, len(snap.Matchups))

	for _, m := range snap.Matchups {
		if m.ParentID != nil {
			continue
		}
		event, ok := n.buildEvent(m, info)
		if !ok {
			continue
		}
		index[m.ID] = len(events)
		events = append(events, event)
	}

	// Specials are registered in matchup order so player markets come out deterministically
	specials := make(map[int64]specialRef)
	specialOrder := make(map[int64][]int64)
	for _, m := range snap.Matchups {
		if m.ParentID == nil || m.Special == nil {
			continue
		}
		if _, ok := index[*m.ParentID]; !ok {
			continue
		}
		if strings.Contains(m.Special.Description, rangeSpecialToken) {
			continue
		}
		player, category, ok := parseSpecialDescription(m.Special.Description)
		if !ok {
			n.logger.Debug().
				Int64("matchup_id", m.ID).
				Str("description", m.Special.Description).
				Msg("skipping special with unsupported category")
			continue
		}
		specials[m.ID] = specialRef{
			id:          m.ID,
			parentID:    *m.ParentID,
			player:      player,
			category:    category,
			description: m.Special.Description,
		}
		specialOrder[*m.ParentID] = append(specialOrder[*m.ParentID], m.ID)
	}

	playerMarkets := make(map[int64]models.Market)
	unrecognized := 0

	for _, raw := range snap.Markets {
		if len(raw.Prices) == 0 {
			continue
		}

		_, isParent := index[raw.MatchupID]
		ref, isSpecial := specials[raw.MatchupID]
		c := classify(raw, isParent, isSpecial)

		switch c.class {
		case classMoneyline, classHandicap, classTotal, classTeamTotal:
			market, ok := gameMarket(raw, c)
			if !ok {
				continue
			}
			i := index[raw.MatchupID]
			events[i].Markets = append(events[i].Markets, market)

		case classPlayerOverUnder, classPlayerYesNo:
			market, ok := playerMarket(raw, c, ref)
			if !ok {
				continue
			}
			// a later record for the same special replaces an earlier one
			playerMarkets[ref.id] = market

		case classOddEven:
			continue

		default:
			unrecognized++
		}
	}

	for i := range events {
		id, _ := strconv.ParseInt(events[i].ID, 10, 64)
		for _, specialID := range specialOrder[id] {
			if market, ok := playerMarkets[specialID]; ok {
				events[i].Markets = append(events[i].Markets, market)
			}
		}
	}

	n.logger.Debug().
		Str("league", string(info.League)).
		Int("events", len(events)).
		Int("specials", len(specials)).
		Int("unrecognized_markets", unrecognized).
		Msg("normalized reference snapshot")

	return events
}

// buildEvent accepts a fixture only when it has exactly a home and an away team
func (n *Normalizer) buildEvent(m Matchup, info models.LeagueInfo) (models.Event, bool) {
	if len(m.Participants) != 2 {
		return models.Event{}, false
	}

	var home, away string
	for _, p := range m.Participants {
		if strings.Contains(p.Name, "(") {
			return models.Event{}, false
		}
		switch p.Alignment {
		case "home":
			home = p.Name
		case "away":
			away = p.Name
		}
	}
	if home == "" || away == "" {
		return models.Event{}, false
	}

	start, err := time.Parse(time.RFC3339, m.StartTime)
	if err != nil && m.StartTime != "" {
		n.logger.Debug().Err(err).Int64("matchup_id", m.ID).Msg("unparseable start time")
	}

	return models.Event{
		ID:        strconv.FormatInt(m.ID, 10),
		League:    info.League,
		Name:      models.FormatEventName(info.Style, home, away),
		Home:      home,
		Away:      away,
		StartTime: start,
		Markets:   []models.Market{},
	}, true
}

func gameMarket(raw Market, c classified) (models.Market, bool) {
	market := models.Market{
		Token:    raw.Key,
		MarketID: strconv.FormatInt(raw.MatchupID, 10) + ":" + raw.Key,
		Limit:    firstLimit(raw.Limits),
	}

	switch c.class {
	case classMoneyline:
		market.Kind = models.KindMoneyline
		market.Outcomes = designated(raw.Prices, []models.Side{models.SideHome, models.SideAway, models.SideDraw})

	case classHandicap:
		if !hasPoints(raw.Prices) {
			return models.Market{}, false
		}
		market.Kind = models.KindHandicap
		market.Outcomes = designated(raw.Prices, []models.Side{models.SideHome, models.SideAway})

	case classTotal:
		market.Kind = models.KindTotal
		market.Threshold = c.threshold
		market.Outcomes = designated(raw.Prices, []models.Side{models.SideOver, models.SideUnder})

	case classTeamTotal:
		market.Kind = models.KindTeamTotal
		market.Threshold = c.threshold
		market.Team = c.team
		market.Outcomes = designated(raw.Prices, []models.Side{models.SideOver, models.SideUnder})
	}

	if err := market.Validate(); err != nil {
		return models.Market{}, false
	}
	return market, true
}

func playerMarket(raw Market, c classified, ref specialRef) (models.Market, bool) {
	if len(raw.Prices) != 2 {
		return models.Market{}, false
	}

	// selections on a special are ordered by participant id: over/yes first
	prices := make([]Price, len(raw.Prices))
	copy(prices, raw.Prices)
	sort.SliceStable(prices, func(i, j int) bool {
		return participantID(prices[i]) < participantID(prices[j])
	})

	market := models.Market{
		Token:    raw.Key,
		MarketID: strconv.FormatInt(raw.MatchupID, 10) + ":" + raw.Key,
		Player:   ref.player,
		Category: ref.category,
		Limit:    firstLimit(raw.Limits),
	}

	if c.class == classPlayerOverUnder {
		market.Kind = models.KindPlayerOverUnder
		market.Threshold = c.threshold
		market.Outcomes = []models.Outcome{
			{Side: models.SideOver, Participant: ref.player, Price: prices[0].Price, Line: c.threshold},
			{Side: models.SideUnder, Participant: ref.player, Price: prices[1].Price, Line: c.threshold},
		}
	} else {
		market.Kind = models.KindPlayerYesNo
		market.Outcomes = []models.Outcome{
			{Side: models.SideYes, Participant: ref.player, Price: prices[0].Price},
			{Side: models.SideNo, Participant: ref.player, Price: prices[1].Price},
		}
	}

	return market, true
}

// designated orders prices by designation. Prices without a designation fall back to
// their position in the record.
func designated(prices []Price, order []models.Side) []models.Outcome {
	bySide := make(map[models.Side]Price, len(prices))
	positional := false
	for _, p := range prices {
		if p.Designation == "" {
			positional = true
			break
		}
		bySide[models.Side(p.Designation)] = p
	}

	outcomes := make([]models.Outcome, 0, len(prices))
	if positional {
		for i, p := range prices {
			if i >= len(order) {
				break
			}
			outcomes = append(outcomes, models.Outcome{Side: order[i], Price: p.Price, Line: points(p)})
		}
		return outcomes
	}

	for _, side := range order {
		if p, ok := bySide[side]; ok {
			outcomes = append(outcomes, models.Outcome{Side: side, Price: p.Price, Line: points(p)})
		}
	}
	return outcomes
}

func hasPoints(prices []Price) bool {
	for _, p := range prices {
		if p.Points == nil {
			return false
		}
	}
	return true
}

func points(p Price) float64 {
	if p.Points == nil {
		return 0
	}
	return *p.Points
}

func participantID(p Price) int64 {
	if p.ParticipantID == nil {
		return 0
	}
	return *p.ParticipantID
}

func firstLimit(limits []Limit) float64 {
	if len(limits) == 0 {
		return 0
	}
	return limits[0].Amount
}
