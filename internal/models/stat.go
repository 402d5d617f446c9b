package models

import "math"

// StatCategory is the statistic a player proposition is settled on
type StatCategory string

const (
	StatPoints           StatCategory = "points"
	StatRebounds         StatCategory = "rebounds"
	StatAssists          StatCategory = "assists"
	StatThrees           StatCategory = "threes"
	StatLongestReception StatCategory = "longest_reception"
	StatFirstTouchdown   StatCategory = "first_touchdown"
	StatAnytimeTouchdown StatCategory = "anytime_touchdown"
	StatAnytimeGoal      StatCategory = "anytime_goal"
)

// PrettyName returns the label used in opportunity descriptions
func (c StatCategory) PrettyName() string {
	switch c {
	case StatPoints:
		return "Points"
	case StatRebounds:
		return "Rebounds"
	case StatAssists:
		return "Assists"
	case StatThrees:
		return "Threes"
	case StatLongestReception:
		return "Yards Longest Reception"
	case StatFirstTouchdown:
		return "First Touchdown"
	case StatAnytimeTouchdown:
		return "Anytime Touchdown"
	case StatAnytimeGoal:
		return "Anytime Goal Scorer"
	default:
		return string(c)
	}
}

// PropCount converts a decimal prop threshold (24.5) into the whole "N or more" count (25)
func PropCount(threshold float64) int {
	return int(math.Floor(threshold)) + 1
}
