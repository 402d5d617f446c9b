package models

import (
	"strings"
	"time"
)

// NameStyle is the sport convention used to render a fixture name
type NameStyle int

const (
	// NameStyleAwayAtHome renders "Away @ Home" (North American sports)
	NameStyleAwayAtHome NameStyle = iota
	// NameStyleHomeVAway renders "Home v Away" (soccer, European hockey)
	NameStyleHomeVAway
)

const (
	atSeparator = " @ "
	vSeparator  = " v "
)

// Separator returns the token placed between the two team names
func (s NameStyle) Separator() string {
	if s == NameStyleHomeVAway {
		return vSeparator
	}
	return atSeparator
}

// FormatEventName builds a canonical fixture name
func FormatEventName(style NameStyle, home, away string) string {
	if style == NameStyleHomeVAway {
		return home + vSeparator + away
	}
	return away + atSeparator + home
}

// SplitEventName splits a fixture name into its two team tokens in written order and
// reports which convention it uses.
func SplitEventName(name string) (first, second string, style NameStyle, ok bool) {
	if a, b, found := strings.Cut(name, atSeparator); found {
		return a, b, NameStyleAwayAtHome, true
	}
	if a, b, found := strings.Cut(name, vSeparator); found {
		return a, b, NameStyleHomeVAway, true
	}
	return "", "", NameStyleAwayAtHome, false
}

// HomeAway extracts the home and away teams from a fixture name
func HomeAway(name string) (home, away string, ok bool) {
	first, second, style, ok := SplitEventName(name)
	if !ok {
		return "", "", false
	}
	if style == NameStyleHomeVAway {
		return first, second, true
	}
	return second, first, true
}

// Event is one real-world fixture with the markets a provider quotes on it
type Event struct {
	ID        string    `json:"id"`
	League    League    `json:"league"`
	Name      string    `json:"name"`
	Home      string    `json:"home"`
	Away      string    `json:"away"`
	StartTime time.Time `json:"start_time"`
	Markets   []Market  `json:"markets"`
}

// Style reports the naming convention of the event
func (e Event) Style() NameStyle {
	_, _, style, _ := SplitEventName(e.Name)
	return style
}
