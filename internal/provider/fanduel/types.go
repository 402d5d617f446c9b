package fanduel

// Sportsbook content/competition page shapes. Attachments are keyed by id.

// Page is one content-managed or competition page response
type Page struct {
	Layout      Layout      `json:"layout"`
	Attachments Attachments `json:"attachments"`
}

type Layout struct {
	Coupons map[string]Coupon `json:"coupons"`
}

type Coupon struct {
	Display []Display `json:"display"`
}

type Display struct {
	Rows []Row `json:"rows"`
}

type Row struct {
	EventID int64 `json:"eventId"`
}

type Attachments struct {
	Events  map[string]Event  `json:"events"`
	Markets map[string]Market `json:"markets"`
}

type Event struct {
	EventID  int64  `json:"eventId"`
	Name     string `json:"name"`
	OpenDate string `json:"openDate"`
}

type Market struct {
	MarketID         string   `json:"marketId"`
	ExternalMarketID string   `json:"externalMarketId,omitempty"`
	EventID          int64    `json:"eventId"`
	MarketType       string   `json:"marketType"`
	Runners          []Runner `json:"runners"`
}

type Runner struct {
	SelectionID   int64      `json:"selectionId"`
	RunnerName    string     `json:"runnerName"`
	Handicap      float64    `json:"handicap"`
	WinRunnerOdds RunnerOdds `json:"winRunnerOdds"`
}

type RunnerOdds struct {
	AmericanDisplayOdds *AmericanOdds `json:"americanDisplayOdds,omitempty"`
}

type AmericanOdds struct {
	AmericanOdds int `json:"americanOdds"`
}

// Price returns the runner's American odds, false when the runner is unpriced
func (r Runner) Price() (int, bool) {
	if r.WinRunnerOdds.AmericanDisplayOdds == nil || r.WinRunnerOdds.AmericanDisplayOdds.AmericanOdds == 0 {
		return 0, false
	}
	return r.WinRunnerOdds.AmericanDisplayOdds.AmericanOdds, true
}
