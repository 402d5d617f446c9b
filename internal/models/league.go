package models

import (
	"fmt"
	"strings"
)

// League identifies a supported competition
type League string

const (
	LeagueNBA   League = "nba"
	LeagueNFL   League = "nfl"
	LeagueNHL   League = "nhl"
	LeagueNCAAF League = "ncaaf"
	LeagueNCAAB League = "ncaab"
	LeagueUCL   League = "ucl"
	LeagueEPL   League = "epl"
	LeagueSHL   League = "shl"
)

// FanDuelPage selects which retail endpoint serves a league
type FanDuelPage string

const (
	FanDuelContentPage     FanDuelPage = "content"
	FanDuelCompetitionPage FanDuelPage = "competition"
)

// FanDuelSource locates a league on the retail book
type FanDuelSource struct {
	Page          FanDuelPage
	CustomPageID  string // content page id, e.g. "nba"
	CouponID      string // layout coupon holding the event rows; empty = all attached events
	EventTypeID   string // competition page only
	CompetitionID string // competition page only
}

// LeagueInfo holds the per-provider coordinates of a league
type LeagueInfo struct {
	League     League
	PinnacleID int
	Style      NameStyle
	FanDuel    FanDuelSource
}

var catalog = []LeagueInfo{
	{LeagueNBA, 487, NameStyleAwayAtHome, FanDuelSource{Page: FanDuelContentPage, CustomPageID: "nba", CouponID: "32866"}},
	{LeagueNFL, 889, NameStyleAwayAtHome, FanDuelSource{Page: FanDuelContentPage, CustomPageID: "nfl"}},
	{LeagueNHL, 1456, NameStyleAwayAtHome, FanDuelSource{Page: FanDuelContentPage, CustomPageID: "nhl", CouponID: "35876"}},
	{LeagueNCAAF, 880, NameStyleAwayAtHome, FanDuelSource{Page: FanDuelContentPage, CustomPageID: "ncaaf", CouponID: "2"}},
	{LeagueNCAAB, 493, NameStyleAwayAtHome, FanDuelSource{Page: FanDuelContentPage, CustomPageID: "ncaab", CouponID: "9411"}},
	{LeagueUCL, 2627, NameStyleHomeVAway, FanDuelSource{Page: FanDuelCompetitionPage, EventTypeID: "1", CompetitionID: "228"}},
	{LeagueEPL, 1980, NameStyleHomeVAway, FanDuelSource{Page: FanDuelCompetitionPage, EventTypeID: "1", CompetitionID: "10932509"}},
	{LeagueSHL, 1517, NameStyleHomeVAway, FanDuelSource{Page: FanDuelCompetitionPage, EventTypeID: "7524", CompetitionID: "10546040"}},
}

// Leagues returns every supported league in catalog order
func Leagues() []League {
	out := make([]League, 0, len(catalog))
	for _, info := range catalog {
		out = append(out, info.League)
	}
	return out
}

// LookupLeague returns the catalog entry for a league
func LookupLeague(l League) (LeagueInfo, bool) {
	for _, info := range catalog {
		if info.League == l {
			return info, true
		}
	}
	return LeagueInfo{}, false
}

// ParseLeague converts a case-insensitive name to a League
func ParseLeague(s string) (League, error) {
	l := League(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := LookupLeague(l); !ok {
		return "", fmt.Errorf("unknown league %q", s)
	}
	return l, nil
}
