package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/value-bet-service/pkg/oddsmath"
)

// Candidate is a reconciled (reference outcome, retail outcome) pair waiting to be priced.
// OpposingPrices holds the reference prices of every other outcome of the same market.
type Candidate struct {
	League            League     `json:"league"`
	EventID           string     `json:"event_id"`
	EventName         string     `json:"event_name"`
	Kind              MarketKind `json:"kind"`
	Side              Side       `json:"side"`
	Description       string     `json:"description"`
	ReferencePrice    int        `json:"reference_price"`
	OpposingPrices    []int      `json:"opposing_prices"`
	Limit             float64    `json:"limit"`
	RetailPrice       int        `json:"retail_price"`
	RetailMarketID    string     `json:"retail_market_id"`
	RetailSelectionID string     `json:"retail_selection_id"`
}

// Opportunity is a retail price that beats the devigged reference price
type Opportunity struct {
	ID                uuid.UUID       `json:"id"`
	League            League          `json:"league"`
	EventID           string          `json:"event_id"`
	EventName         string          `json:"event_name"`
	Kind              MarketKind      `json:"kind"`
	Side              Side            `json:"side"`
	Description       string          `json:"description"`
	ReferencePrice    int             `json:"reference_price"`
	OpposingPrices    []int           `json:"opposing_prices"`
	Limit             float64         `json:"limit"`
	RetailPrice       int             `json:"retail_price"`
	RetailMarketID    string          `json:"retail_market_id"`
	RetailSelectionID string          `json:"retail_selection_id"`
	RetailDecimal     float64         `json:"retail_decimal"`
	ReferenceMargin   float64         `json:"reference_margin"` // reference overround, %
	FairProbability   float64         `json:"fair_probability"`
	RetailProbability float64         `json:"retail_probability"`
	EdgePercent       float64         `json:"edge_percent"`  // (fair - retail) / retail × 100
	KellyPercent      float64         `json:"kelly_percent"` // full Kelly, % of bankroll
	Confidence        float64         `json:"confidence"`    // 1-10
	StakePercent      float64         `json:"stake_percent"` // recommended % of bankroll
	StakeAmount       decimal.Decimal `json:"stake_amount"`  // bankroll × stake%, rounded up to half units
	Highlight         bool            `json:"highlight"`
}

// SizingPolicy holds the caller's devig and stake sizing choices
type SizingPolicy struct {
	Method            oddsmath.Method
	Cap               float64 // maximum stake, % of bankroll (e.g. 5)
	Scale             float64 // divisor applied to kelly% × confidence (e.g. 10)
	ConfidenceFloor   float64 // limit mapped to confidence 1
	ConfidenceCeiling float64 // limit mapped to confidence 10
	Bankroll          decimal.Decimal
}

// DefaultSizingPolicy returns the sizing policy used when none is configured
func DefaultSizingPolicy() SizingPolicy {
	return SizingPolicy{
		Method:            oddsmath.MethodPower,
		Cap:               5,
		Scale:             10,
		ConfidenceFloor:   250,
		ConfidenceCeiling: 1500,
		Bankroll:          decimal.NewFromInt(1000),
	}
}

// LeagueOpportunities is the latest evaluated opportunity set of one league
type LeagueOpportunities struct {
	League        League        `json:"league"`
	Opportunities []Opportunity `json:"opportunities"`
	BatchID       string        `json:"batch_id"`
	EvaluatedAt   time.Time     `json:"evaluated_at"`
}

// KafkaSnapshotMessage carries one league's raw provider payloads
type KafkaSnapshotMessage struct {
	League    League          `json:"league"`
	Reference json.RawMessage `json:"reference"` // pinnacle snapshot
	Retail    json.RawMessage `json:"retail"`    // fanduel page
	BatchID   string          `json:"batch_id"`
	Timestamp time.Time       `json:"timestamp"`
}

// KafkaOpportunitiesMessage is published after every evaluated league
type KafkaOpportunitiesMessage struct {
	League        League        `json:"league"`
	Opportunities []Opportunity `json:"opportunities"`
	BatchID       string        `json:"batch_id"`
	Timestamp     time.Time     `json:"timestamp"`
}
