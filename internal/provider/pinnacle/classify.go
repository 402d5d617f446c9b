package pinnacle

import (
	"strconv"
	"strings"

	"github.com/cypherlabdev/value-bet-service/internal/models"
)

// Market key tokens. Keys are "s;<period>;<type>[;<line>[;<side>]]".
const (
	keyMoneyline      = "s;0;m"
	keyOddEven        = "s;1;m"
	keyOverUnder      = "s;0;ou"
	prefixHandicap    = "s;0;s;"
	prefixTotal       = "s;0;ou;"
	prefixTeamTotal   = "s;0;tt;"
	rangeSpecialToken = "Range"
)

// marketClass enumerates every shape a raw market record can take
type marketClass int

const (
	classUnrecognized marketClass = iota
	classMoneyline
	classHandicap
	classTotal
	classTeamTotal
	classPlayerOverUnder
	classPlayerYesNo
	classOddEven
)

// classified is the result of classifying one raw market. Only the fields relevant to
// the class are set.
type classified struct {
	class     marketClass
	threshold float64
	team      models.Side
}

// classify maps a raw market onto a marketClass. parent reports whether the market hangs
// off a fixture, special whether it hangs off a special matchup.
func classify(m Market, parent, special bool) classified {
	key := m.Key

	switch {
	case parent && key == keyMoneyline:
		if len(m.Prices) > 0 && m.Prices[0].Points != nil {
			return classified{class: classUnrecognized}
		}
		return classified{class: classMoneyline}

	case parent && strings.HasPrefix(key, prefixTeamTotal):
		parts := strings.Split(key, ";")
		if len(parts) != 5 || (parts[4] != "home" && parts[4] != "away") {
			return classified{class: classUnrecognized}
		}
		threshold, err := strconv.ParseFloat(parts[3], 64)
		if err != nil {
			return classified{class: classUnrecognized}
		}
		return classified{class: classTeamTotal, threshold: threshold, team: models.Side(parts[4])}

	case parent && strings.HasPrefix(key, prefixHandicap):
		return classified{class: classHandicap}

	case parent && strings.HasPrefix(key, prefixTotal):
		parts := strings.Split(key, ";")
		if len(parts) != 4 {
			return classified{class: classUnrecognized}
		}
		threshold, err := strconv.ParseFloat(parts[3], 64)
		if err != nil {
			return classified{class: classUnrecognized}
		}
		return classified{class: classTotal, threshold: threshold}

	case special && key == keyOverUnder:
		if len(m.Prices) == 0 || m.Prices[0].Points == nil {
			return classified{class: classUnrecognized}
		}
		return classified{class: classPlayerOverUnder, threshold: *m.Prices[0].Points}

	case special && key == keyMoneyline:
		return classified{class: classPlayerYesNo}

	case special && key == keyOddEven:
		return classified{class: classOddEven}
	}

	return classified{class: classUnrecognized}
}

// categories maps special description categories onto stat categories
var categories = map[string]models.StatCategory{
	"Points":            models.StatPoints,
	"Rebounds":          models.StatRebounds,
	"Assists":           models.StatAssists,
	"3 Point FG":        models.StatThrees,
	"Longest Reception": models.StatLongestReception,
	"1st TD Scorer":     models.StatFirstTouchdown,
	"Anytime TD":        models.StatAnytimeTouchdown,
	"Goals":             models.StatAnytimeGoal,
}

// parseSpecialDescription splits "Player Name (Category)"
func parseSpecialDescription(description string) (player string, category models.StatCategory, ok bool) {
	if !strings.HasSuffix(description, ")") {
		return "", "", false
	}
	idx := strings.LastIndex(description, " (")
	if idx <= 0 {
		return "", "", false
	}

	player = description[:idx]
	raw := strings.TrimSuffix(description[idx+2:], ")")
	category, ok = categories[raw]
	return player, category, ok
}
