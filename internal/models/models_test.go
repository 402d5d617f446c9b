package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFormatEventName tests both naming conventions
func TestFormatEventName(t *testing.T) {
	assert.Equal(t, "Lakers @ Celtics", FormatEventName(NameStyleAwayAtHome, "Celtics", "Lakers"))
	assert.Equal(t, "Arsenal v Chelsea", FormatEventName(NameStyleHomeVAway, "Arsenal", "Chelsea"))
}

// TestHomeAway tests sidedness inference from the event name
func TestHomeAway(t *testing.T) {
	home, away, ok := HomeAway("Lakers @ Celtics")
	require.True(t, ok)
	assert.Equal(t, "Celtics", home)
	assert.Equal(t, "Lakers", away)

	home, away, ok = HomeAway("Arsenal v Chelsea")
	require.True(t, ok)
	assert.Equal(t, "Arsenal", home)
	assert.Equal(t, "Chelsea", away)

	_, _, ok = HomeAway("NBA Championship 2025")
	assert.False(t, ok)
}

// TestEventStyle tests style detection
func TestEventStyle(t *testing.T) {
	assert.Equal(t, NameStyleAwayAtHome, Event{Name: "Lakers @ Celtics"}.Style())
	assert.Equal(t, NameStyleHomeVAway, Event{Name: "Arsenal v Chelsea"}.Style())
}

// TestMarketValidate tests the outcome count invariant
func TestMarketValidate(t *testing.T) {
	twoWay := Market{Kind: KindTotal, Outcomes: []Outcome{{Side: SideOver}, {Side: SideUnder}}}
	assert.NoError(t, twoWay.Validate())

	threeWay := Market{Kind: KindMoneyline, Outcomes: []Outcome{{Side: SideHome}, {Side: SideAway}, {Side: SideDraw}}}
	assert.NoError(t, threeWay.Validate())
	assert.True(t, threeWay.IsThreeWay())

	badThree := Market{Kind: KindHandicap, Outcomes: []Outcome{{Side: SideHome}, {Side: SideAway}, {Side: SideDraw}}}
	assert.Error(t, badThree.Validate())

	missingDraw := Market{Kind: KindMoneyline, Outcomes: []Outcome{{Side: SideHome}, {Side: SideAway}, {Side: SideHome}}}
	assert.Error(t, missingDraw.Validate())

	single := Market{Kind: KindMoneyline, Outcomes: []Outcome{{Side: SideHome}}}
	assert.Error(t, single.Validate())
}

// TestPropCount tests conversion of decimal thresholds to whole counts
func TestPropCount(t *testing.T) {
	assert.Equal(t, 1, PropCount(0.5))
	assert.Equal(t, 25, PropCount(24.5))
	assert.Equal(t, 25, PropCount(24))
	assert.Equal(t, 3, Market{Threshold: 2.5}.PropCount())
}

// TestPropTemplate tests rendering retail tokens
func TestPropTemplate(t *testing.T) {
	tests := []struct {
		category StatCategory
		count    int
		want     string
		ok       bool
	}{
		{StatPoints, 25, "TO_SCORE_25+_POINTS", true},
		{StatRebounds, 8, "TO_SCORE_8+_REBOUNDS", true},
		{StatAssists, 6, "TO_RECORD_6+_ASSISTS", true},
		{StatThrees, 3, "3+_MADE_THREES", true},
		{StatLongestReception, 20, "PLAYERS_WITH_20+_YARDS_RECEPTION", true},
		{StatFirstTouchdown, 1, "FIRST_TOUCHDOWN_SCORER", true},
		{StatAnytimeTouchdown, 1, "ANY_TIME_TOUCHDOWN_SCORER", true},
		{StatAnytimeGoal, 1, "ANY_TIME_GOAL_SCORER", true},
		{StatAnytimeGoal, 2, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			tmpl, ok := tt.category.Template()
			require.True(t, ok)
			got, ok := tmpl.RetailToken(tt.count)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestParsePropToken tests recognizing retail prop tokens
func TestParsePropToken(t *testing.T) {
	category, n, ok := ParsePropToken("TO_SCORE_25+_POINTS")
	require.True(t, ok)
	assert.Equal(t, StatPoints, category)
	assert.Equal(t, 25, n)

	category, n, ok = ParsePropToken("3+_MADE_THREES")
	require.True(t, ok)
	assert.Equal(t, StatThrees, category)
	assert.Equal(t, 3, n)

	category, n, ok = ParsePropToken("ANY_TIME_GOAL_SCORER")
	require.True(t, ok)
	assert.Equal(t, StatAnytimeGoal, category)
	assert.Equal(t, 0, n)

	for _, token := range []string{"MONEY_LINE", "TO_SCORE_X+_POINTS", "TO_SCORE_+_POINTS", "PLAYER_TO_SCORE_25+_POINTS_ALT"} {
		_, _, ok := ParsePropToken(token)
		assert.False(t, ok, token)
	}
}

// TestStatPrettyName tests description labels
func TestStatPrettyName(t *testing.T) {
	assert.Equal(t, "Threes", StatThrees.PrettyName())
	assert.Equal(t, "Yards Longest Reception", StatLongestReception.PrettyName())
	assert.Equal(t, "Anytime Goal Scorer", StatAnytimeGoal.PrettyName())
}

// TestParseLeague tests the league catalog
func TestParseLeague(t *testing.T) {
	l, err := ParseLeague(" NBA ")
	require.NoError(t, err)
	assert.Equal(t, LeagueNBA, l)

	_, err = ParseLeague("mlb")
	assert.Error(t, err)

	info, ok := LookupLeague(LeagueEPL)
	require.True(t, ok)
	assert.Equal(t, 1980, info.PinnacleID)
	assert.Equal(t, NameStyleHomeVAway, info.Style)
	assert.Equal(t, FanDuelCompetitionPage, info.FanDuel.Page)

	assert.Len(t, Leagues(), 8)
}
