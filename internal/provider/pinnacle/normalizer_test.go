package pinnacle

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabdev/value-bet-service/internal/models"
)

func i64(v int64) *int64     { return &v }
func f64(v float64) *float64 { return &v }

func nbaInfo(t *testing.T) models.LeagueInfo {
	info, ok := models.LookupLeague(models.LeagueNBA)
	require.True(t, ok)
	return info
}

// testSnapshot builds a fixture with one game, its specials and a futures matchup
func testSnapshot() *Snapshot {
	return &Snapshot{
		Matchups: []Matchup{
			{
				ID:        1001,
				StartTime: "2025-01-15T00:30:00Z",
				Participants: []Participant{
					{Name: "Boston Celtics", Alignment: "home"},
					{Name: "Los Angeles Lakers", Alignment: "away"},
				},
			},
			{
				// outright winner: not a two-team fixture
				ID: 1002,
				Participants: []Participant{
					{Name: "Boston Celtics", Alignment: "neutral"},
					{Name: "Denver Nuggets", Alignment: "neutral"},
					{Name: "Oklahoma City Thunder", Alignment: "neutral"},
				},
			},
			{
				// alternate-line copy of the game
				ID: 1003,
				Participants: []Participant{
					{Name: "Boston Celtics (Alt)", Alignment: "home"},
					{Name: "Los Angeles Lakers", Alignment: "away"},
				},
			},
			{
				ID:       2001,
				ParentID: i64(1001),
				Special:  &Special{Category: "Player Props", Description: "Jayson Tatum (Points)"},
				Participants: []Participant{
					{ID: 9001, Name: "Over"},
					{ID: 9002, Name: "Under"},
				},
			},
			{
				ID:       2002,
				ParentID: i64(1001),
				Special:  &Special{Category: "Player Props", Description: "Jayson Tatum Points Range (Points)"},
			},
			{
				ID:       2003,
				ParentID: i64(1001),
				Special:  &Special{Category: "Player Props", Description: "Jayson Tatum (Double Doubles)"},
			},
			{
				ID:       2004,
				ParentID: i64(9999),
				Special:  &Special{Category: "Player Props", Description: "Orphan Player (Points)"},
			},
		},
		Markets: []Market{
			{
				MatchupID: 1001, Key: "s;0;m",
				Prices: []Price{{Designation: "home", Price: -150}, {Designation: "away", Price: 130}},
				Limits: []Limit{{Amount: 1000, Type: "maxRiskStake"}},
			},
			{
				MatchupID: 1001, Key: "s;0;s;-3.5",
				Prices: []Price{
					{Designation: "away", Points: f64(3.5), Price: -105},
					{Designation: "home", Points: f64(-3.5), Price: -115},
				},
				Limits: []Limit{{Amount: 2000}},
			},
			{
				MatchupID: 1001, Key: "s;0;ou;220.5",
				Prices: []Price{
					{Designation: "over", Points: f64(220.5), Price: -110},
					{Designation: "under", Points: f64(220.5), Price: -110},
				},
				Limits: []Limit{{Amount: 1500}},
			},
			{
				MatchupID: 1001, Key: "s;0;tt;112.5;home",
				Prices: []Price{
					{Designation: "over", Points: f64(112.5), Price: -112},
					{Designation: "under", Points: f64(112.5), Price: -108},
				},
			},
			{
				// placeholder with no live prices
				MatchupID: 1001, Key: "s;0;ou;221.5",
			},
			{
				MatchupID: 1001, Key: "s;3;zz",
				Prices: []Price{{Price: 100}, {Price: -120}},
			},
			{
				MatchupID: 2001, Key: "s;0;ou",
				Prices: []Price{
					{ParticipantID: i64(9002), Points: f64(26.5), Price: 105},
					{ParticipantID: i64(9001), Points: f64(26.5), Price: -135},
				},
				Limits: []Limit{{Amount: 500}},
			},
			{
				MatchupID: 2002, Key: "s;0;ou",
				Prices: []Price{{ParticipantID: i64(1), Points: f64(20), Price: 100}, {ParticipantID: i64(2), Points: f64(20), Price: -120}},
			},
			{
				MatchupID: 1003, Key: "s;0;m",
				Prices: []Price{{Designation: "home", Price: -200}, {Designation: "away", Price: 170}},
			},
		},
	}
}

// TestNormalize_Game tests fixture filtering and game market classification
func TestNormalize_Game(t *testing.T) {
	n := NewNormalizer(zerolog.Nop())
	snap := testSnapshot()

	events := n.Normalize(snap, nbaInfo(t))
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, "1001", e.ID)
	assert.Equal(t, "Los Angeles Lakers @ Boston Celtics", e.Name)
	assert.Equal(t, "Boston Celtics", e.Home)
	assert.Equal(t, "Los Angeles Lakers", e.Away)
	assert.Equal(t, models.LeagueNBA, e.League)
	assert.Equal(t, 2025, e.StartTime.Year())

	kinds := make([]models.MarketKind, 0, len(e.Markets))
	for _, m := range e.Markets {
		kinds = append(kinds, m.Kind)
	}
	assert.Equal(t, []models.MarketKind{
		models.KindMoneyline,
		models.KindHandicap,
		models.KindTotal,
		models.KindTeamTotal,
		models.KindPlayerOverUnder,
	}, kinds)

	ml := e.Markets[0]
	home, ok := ml.Outcome(models.SideHome)
	require.True(t, ok)
	assert.Equal(t, -150, home.Price)
	assert.Equal(t, 1000.0, ml.Limit)

	spread := e.Markets[1]
	home, ok = spread.Outcome(models.SideHome)
	require.True(t, ok)
	assert.Equal(t, -3.5, home.Line)
	assert.Equal(t, -115, home.Price)

	total := e.Markets[2]
	assert.Equal(t, 220.5, total.Threshold)

	teamTotal := e.Markets[3]
	assert.Equal(t, models.SideHome, teamTotal.Team)
	assert.Equal(t, 112.5, teamTotal.Threshold)
}

// TestNormalize_SpecialMerge tests that specials land on their parent without mutating input
func TestNormalize_SpecialMerge(t *testing.T) {
	n := NewNormalizer(zerolog.Nop())
	snap := testSnapshot()

	before, err := json.Marshal(snap)
	require.NoError(t, err)

	events := n.Normalize(snap, nbaInfo(t))
	require.Len(t, events, 1)

	prop := events[0].Markets[len(events[0].Markets)-1]
	assert.Equal(t, models.KindPlayerOverUnder, prop.Kind)
	assert.Equal(t, "Jayson Tatum", prop.Player)
	assert.Equal(t, models.StatPoints, prop.Category)
	assert.Equal(t, 26.5, prop.Threshold)
	assert.Equal(t, 27, prop.PropCount())
	assert.Equal(t, 500.0, prop.Limit)

	// lower participant id is the over
	over, ok := prop.Outcome(models.SideOver)
	require.True(t, ok)
	assert.Equal(t, -135, over.Price)
	under, ok := prop.Outcome(models.SideUnder)
	require.True(t, ok)
	assert.Equal(t, 105, under.Price)

	after, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

// TestNormalize_YesNoSpecial tests occurrence specials
func TestNormalize_YesNoSpecial(t *testing.T) {
	n := NewNormalizer(zerolog.Nop())
	info, ok := models.LookupLeague(models.LeagueNFL)
	require.True(t, ok)

	snap := &Snapshot{
		Matchups: []Matchup{
			{ID: 1, Participants: []Participant{{Name: "Chiefs", Alignment: "home"}, {Name: "Bills", Alignment: "away"}}},
			{ID: 2, ParentID: i64(1), Special: &Special{Description: "Travis Kelce (Anytime TD)"}},
			{ID: 3, ParentID: i64(1), Special: &Special{Description: "Travis Kelce (1st TD Scorer)"}},
		},
		Markets: []Market{
			{MatchupID: 2, Key: "s;0;m", Prices: []Price{{ParticipantID: i64(11), Price: 110}, {ParticipantID: i64(12), Price: -140}}},
			{MatchupID: 3, Key: "s;1;m", Prices: []Price{{ParticipantID: i64(13), Price: -105}, {ParticipantID: i64(14), Price: -115}}},
		},
	}

	events := n.Normalize(snap, info)
	require.Len(t, events, 1)
	require.Len(t, events[0].Markets, 1)

	m := events[0].Markets[0]
	assert.Equal(t, models.KindPlayerYesNo, m.Kind)
	assert.Equal(t, models.StatAnytimeTouchdown, m.Category)
	yes, ok := m.Outcome(models.SideYes)
	require.True(t, ok)
	assert.Equal(t, 110, yes.Price)
}

// TestNormalize_HomeVAway tests soccer naming
func TestNormalize_HomeVAway(t *testing.T) {
	n := NewNormalizer(zerolog.Nop())
	info, ok := models.LookupLeague(models.LeagueEPL)
	require.True(t, ok)

	snap := &Snapshot{
		Matchups: []Matchup{
			{ID: 7, Participants: []Participant{{Name: "Chelsea", Alignment: "away"}, {Name: "Arsenal", Alignment: "home"}}},
		},
		Markets: []Market{
			{MatchupID: 7, Key: "s;0;m", Prices: []Price{
				{Designation: "home", Price: 150},
				{Designation: "draw", Price: 240},
				{Designation: "away", Price: 200},
			}},
		},
	}

	events := n.Normalize(snap, info)
	require.Len(t, events, 1)
	assert.Equal(t, "Arsenal v Chelsea", events[0].Name)
	require.Len(t, events[0].Markets, 1)
	assert.True(t, events[0].Markets[0].IsThreeWay())
}

// TestNormalize_MissingSections tests that absent payload sections yield no events
func TestNormalize_MissingSections(t *testing.T) {
	n := NewNormalizer(zerolog.Nop())
	info := nbaInfo(t)

	assert.Empty(t, n.Normalize(nil, info))
	assert.Empty(t, n.Normalize(&Snapshot{}, info))

	snap := testSnapshot()
	snap.Markets = nil
	assert.Empty(t, n.Normalize(snap, info))

	snap = testSnapshot()
	snap.Matchups = nil
	assert.Empty(t, n.Normalize(snap, info))
}

// TestClassify tests every market class including the unrecognized outcome
func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		market  Market
		parent  bool
		special bool
		want    marketClass
	}{
		{"moneyline", Market{Key: "s;0;m", Prices: []Price{{Price: -110}}}, true, false, classMoneyline},
		{"moneyline with points", Market{Key: "s;0;m", Prices: []Price{{Points: f64(1), Price: -110}}}, true, false, classUnrecognized},
		{"handicap", Market{Key: "s;0;s;-3.5"}, true, false, classHandicap},
		{"total", Market{Key: "s;0;ou;220.5"}, true, false, classTotal},
		{"total bad threshold", Market{Key: "s;0;ou;abc"}, true, false, classUnrecognized},
		{"team total", Market{Key: "s;0;tt;110.5;away"}, true, false, classTeamTotal},
		{"team total bad side", Market{Key: "s;0;tt;110.5;draw"}, true, false, classUnrecognized},
		{"player over under", Market{Key: "s;0;ou", Prices: []Price{{Points: f64(24.5)}}}, false, true, classPlayerOverUnder},
		{"player over under without points", Market{Key: "s;0;ou", Prices: []Price{{Price: 100}}}, false, true, classUnrecognized},
		{"player yes no", Market{Key: "s;0;m"}, false, true, classPlayerYesNo},
		{"odd even", Market{Key: "s;1;m"}, false, true, classOddEven},
		{"first half moneyline", Market{Key: "s;1;m"}, true, false, classUnrecognized},
		{"orphan", Market{Key: "s;0;m"}, false, false, classUnrecognized},
		{"unknown token", Market{Key: "s;0;zz"}, true, false, classUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.market, tt.parent, tt.special)
			assert.Equal(t, tt.want, got.class)
		})
	}
}

// TestParseSpecialDescription tests player and category extraction
func TestParseSpecialDescription(t *testing.T) {
	player, category, ok := parseSpecialDescription("Patrick Mahomes (Longest Reception)")
	require.True(t, ok)
	assert.Equal(t, "Patrick Mahomes", player)
	assert.Equal(t, models.StatLongestReception, category)

	player, category, ok = parseSpecialDescription("Amon-Ra St. Brown (Jr) (3 Point FG)")
	require.True(t, ok)
	assert.Equal(t, "Amon-Ra St. Brown (Jr)", player)
	assert.Equal(t, models.StatThrees, category)

	_, _, ok = parseSpecialDescription("Total Corners")
	assert.False(t, ok)

	_, _, ok = parseSpecialDescription("Jayson Tatum (Steals)")
	assert.False(t, ok)
}
