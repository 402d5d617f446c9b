package fanduel

import "github.com/cypherlabdev/value-bet-service/internal/models"

// Retail market type tokens for game markets
const (
	TokenMoneyline   = "MONEY_LINE"
	TokenWinDrawWin  = "WIN-DRAW-WIN"
	TokenHandicap    = "MATCH_HANDICAP_(2-WAY)"
	TokenTotalPoints = "TOTAL_POINTS_(OVER/UNDER)"
)

type marketClass int

const (
	classUnrecognized marketClass = iota
	classMoneyline
	classWinDrawWin
	classHandicap
	classTotal
	classPlayerProp
)

type classified struct {
	class    marketClass
	category models.StatCategory
	count    int
}

// classify maps a retail market type onto a marketClass
func classify(marketType string) classified {
	switch marketType {
	case TokenMoneyline:
		return classified{class: classMoneyline}
	case TokenWinDrawWin:
		return classified{class: classWinDrawWin}
	case TokenHandicap:
		return classified{class: classHandicap}
	case TokenTotalPoints:
		return classified{class: classTotal}
	}

	if category, count, ok := models.ParsePropToken(marketType); ok {
		return classified{class: classPlayerProp, category: category, count: count}
	}
	return classified{class: classUnrecognized}
}
