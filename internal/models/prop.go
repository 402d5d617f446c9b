package models

import (
	"strconv"
	"strings"
)

const countPlaceholder = "{N}"

// PropTemplate maps a stat category onto the retail book's market token
type PropTemplate struct {
	Category StatCategory
	// Token is the retail market type; "{N}" is replaced by the whole count
	Token string
	// YesNo marks occurrence markets whose token carries no count
	YesNo bool
	// SingleOnly restricts the template to a count of exactly one
	SingleOnly bool
}

// Templated reports whether the token carries a count placeholder
func (t PropTemplate) Templated() bool {
	return strings.Contains(t.Token, countPlaceholder)
}

// RetailToken renders the expected retail token for a count, or false when the
// template does not accept that count.
func (t PropTemplate) RetailToken(count int) (string, bool) {
	if t.SingleOnly && count != 1 {
		return "", false
	}
	if !t.Templated() {
		return t.Token, true
	}
	return strings.Replace(t.Token, countPlaceholder, strconv.Itoa(count), 1), true
}

var propTemplates = map[StatCategory]PropTemplate{
	StatPoints:           {Category: StatPoints, Token: "TO_SCORE_{N}+_POINTS"},
	StatRebounds:         {Category: StatRebounds, Token: "TO_SCORE_{N}+_REBOUNDS"},
	StatAssists:          {Category: StatAssists, Token: "TO_RECORD_{N}+_ASSISTS"},
	StatThrees:           {Category: StatThrees, Token: "{N}+_MADE_THREES"},
	StatLongestReception: {Category: StatLongestReception, Token: "PLAYERS_WITH_{N}+_YARDS_RECEPTION"},
	StatFirstTouchdown:   {Category: StatFirstTouchdown, Token: "FIRST_TOUCHDOWN_SCORER", YesNo: true},
	StatAnytimeTouchdown: {Category: StatAnytimeTouchdown, Token: "ANY_TIME_TOUCHDOWN_SCORER", YesNo: true},
	StatAnytimeGoal:      {Category: StatAnytimeGoal, Token: "ANY_TIME_GOAL_SCORER", YesNo: true, SingleOnly: true},
}

// Template returns the retail template for the category
func (c StatCategory) Template() (PropTemplate, bool) {
	t, ok := propTemplates[c]
	return t, ok
}

// ParsePropToken recognizes a retail player-prop market type and extracts its count.
// Count is zero for tokens without a placeholder.
func ParsePropToken(token string) (StatCategory, int, bool) {
	for _, t := range propTemplates {
		if !t.Templated() {
			if token == t.Token {
				return t.Category, 0, true
			}
			continue
		}

		prefix, suffix, _ := strings.Cut(t.Token, countPlaceholder)
		if !strings.HasPrefix(token, prefix) || !strings.HasSuffix(token, suffix) {
			continue
		}
		if len(token) <= len(prefix)+len(suffix) {
			continue
		}
		n, err := strconv.Atoi(token[len(prefix) : len(token)-len(suffix)])
		if err != nil || n <= 0 {
			continue
		}
		return t.Category, n, true
	}
	return "", 0, false
}
