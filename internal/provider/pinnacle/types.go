package pinnacle

// Arcadia guest API shapes. Only the fields the normalizer reads are declared.

// Snapshot is one league's matchups and straight markets fetched together
type Snapshot struct {
	Matchups []Matchup `json:"matchups"`
	Markets  []Market  `json:"markets"`
}

// Matchup is either a fixture (no parent) or a special attached to one
type Matchup struct {
	ID           int64         `json:"id"`
	ParentID     *int64        `json:"parentId,omitempty"`
	StartTime    string        `json:"startTime"` // RFC3339
	Participants []Participant `json:"participants"`
	Special      *Special      `json:"special,omitempty"`
}

// Participant is a team on a fixture or a selection (Over/Under, Yes/No) on a special
type Participant struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Alignment string `json:"alignment"` // "home" | "away" | "neutral"
}

// Special describes a side market such as "LeBron James (Points)"
type Special struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Market is a straight market quoted on a matchup
type Market struct {
	MatchupID int64   `json:"matchupId"`
	Key       string  `json:"key"`
	Type      string  `json:"type"`
	Prices    []Price `json:"prices"`
	Limits    []Limit `json:"limits"`
}

// Price is one priced selection
type Price struct {
	Designation   string   `json:"designation,omitempty"` // home/away/draw or over/under
	ParticipantID *int64   `json:"participantId,omitempty"`
	Points        *float64 `json:"points,omitempty"`
	Price         int      `json:"price"` // American odds
}

// Limit is the maximum stake the book accepts on a market
type Limit struct {
	Amount float64 `json:"amount"`
	Type   string  `json:"type"`
}
