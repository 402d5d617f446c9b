package detector

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/value-bet-service/internal/models"
	"github.com/cypherlabdev/value-bet-service/pkg/oddsmath"
)

// HighlightThreshold is the retail price at or below which a game-market opportunity is highlighted
const HighlightThreshold = -120

// opportunityNamespace seeds deterministic opportunity ids
var opportunityNamespace = uuid.MustParse("6f1c1b4e-3a0e-4c2b-9a57-2d0f6a8f0b11")

// Detector prices reconciled candidates and keeps the ones with positive edge
type Detector struct {
	logger zerolog.Logger
}

// NewDetector creates a new opportunity detector
func NewDetector(logger zerolog.Logger) *Detector {
	return &Detector{
		logger: logger.With().Str("component", "detector").Logger(),
	}
}

// ValidatePolicy rejects sizing policies the detector cannot apply
func ValidatePolicy(policy models.SizingPolicy) error {
	if _, err := oddsmath.ParseMethod(string(policy.Method)); err != nil {
		return err
	}
	if policy.Cap <= 0 {
		return fmt.Errorf("stake cap must be positive, got %v", policy.Cap)
	}
	if policy.Scale <= 0 {
		return fmt.Errorf("stake scale must be positive, got %v", policy.Scale)
	}
	if policy.ConfidenceFloor <= 0 || policy.ConfidenceCeiling <= policy.ConfidenceFloor {
		return fmt.Errorf("invalid confidence band [%v, %v]", policy.ConfidenceFloor, policy.ConfidenceCeiling)
	}
	if policy.Bankroll.IsNegative() {
		return fmt.Errorf("bankroll cannot be negative: %s", policy.Bankroll.String())
	}
	return nil
}

// Evaluate prices a single candidate. It returns false when the retail price carries no
// edge, and an error when the candidate's prices are outside the math's domain.
func (d *Detector) Evaluate(c models.Candidate, policy models.SizingPolicy) (models.Opportunity, bool, error) {
	reference, err := oddsmath.AmericanToProbability(c.ReferencePrice)
	if err != nil {
		return models.Opportunity{}, false, fmt.Errorf("reference price: %w", err)
	}

	probs := make([]float64, 0, len(c.OpposingPrices)+1)
	probs = append(probs, reference)
	for _, price := range c.OpposingPrices {
		p, err := oddsmath.AmericanToProbability(price)
		if err != nil {
			return models.Opportunity{}, false, fmt.Errorf("opposing price: %w", err)
		}
		probs = append(probs, p)
	}

	fair, err := oddsmath.Devig(policy.Method, probs...)
	if err != nil {
		return models.Opportunity{}, false, fmt.Errorf("devig: %w", err)
	}

	retail, err := oddsmath.AmericanToProbability(c.RetailPrice)
	if err != nil {
		return models.Opportunity{}, false, fmt.Errorf("retail price: %w", err)
	}
	retailDecimal, err := oddsmath.AmericanToDecimal(c.RetailPrice)
	if err != nil {
		return models.Opportunity{}, false, fmt.Errorf("retail price: %w", err)
	}

	if fair <= retail {
		return models.Opportunity{}, false, nil
	}

	edge, err := oddsmath.Edge(fair, retail)
	if err != nil {
		return models.Opportunity{}, false, fmt.Errorf("edge: %w", err)
	}
	kelly, err := oddsmath.KellyFraction(fair, retail)
	if err != nil {
		return models.Opportunity{}, false, fmt.Errorf("kelly: %w", err)
	}
	confidence, err := oddsmath.Confidence(c.Limit, policy.ConfidenceFloor, policy.ConfidenceCeiling)
	if err != nil {
		return models.Opportunity{}, false, fmt.Errorf("confidence: %w", err)
	}

	kellyPercent := kelly * 100
	stake := math.Min(policy.Cap, kellyPercent*confidence/policy.Scale)

	return models.Opportunity{
		ID:                opportunityID(c),
		League:            c.League,
		EventID:           c.EventID,
		EventName:         c.EventName,
		Kind:              c.Kind,
		Side:              c.Side,
		Description:       c.Description,
		ReferencePrice:    c.ReferencePrice,
		OpposingPrices:    c.OpposingPrices,
		Limit:             c.Limit,
		RetailPrice:       c.RetailPrice,
		RetailMarketID:    c.RetailMarketID,
		RetailSelectionID: c.RetailSelectionID,
		RetailDecimal:     retailDecimal,
		ReferenceMargin:   oddsmath.Overround(probs...) * 100,
		FairProbability:   fair,
		RetailProbability: retail,
		EdgePercent:       edge,
		KellyPercent:      kellyPercent,
		Confidence:        confidence,
		StakePercent:      stake,
		StakeAmount:       StakeAmount(policy.Bankroll, stake),
		Highlight:         c.RetailPrice <= HighlightThreshold && !c.Kind.IsPlayerProp(),
	}, true, nil
}

// Detect evaluates every candidate and returns the opportunities in candidate order.
// Candidates with out-of-domain prices are skipped. Team totals never qualify.
func (d *Detector) Detect(candidates []models.Candidate, policy models.SizingPolicy) ([]models.Opportunity, error) {
	if err := ValidatePolicy(policy); err != nil {
		return nil, fmt.Errorf("invalid sizing policy: %w", err)
	}

	opportunities := make([]models.Opportunity, 0)
	skipped := 0

	for _, c := range candidates {
		if c.Kind == models.KindTeamTotal {
			continue
		}

		opp, ok, err := d.Evaluate(c, policy)
		if err != nil {
			skipped++
			d.logger.Debug().
				Err(err).
				Str("description", c.Description).
				Int("retail_price", c.RetailPrice).
				Msg("skipping candidate")
			continue
		}
		if ok {
			opportunities = append(opportunities, opp)
		}
	}

	d.logger.Info().
		Int("input_count", len(candidates)).
		Int("output_count", len(opportunities)).
		Int("skipped", skipped).
		Msg("detection complete")

	return opportunities, nil
}

// StakeAmount converts a stake percentage into currency, rounded up to the next half unit:
// floor(2 × bankroll × stake% / 100 + 1) / 2
func StakeAmount(bankroll decimal.Decimal, stakePercent float64) decimal.Decimal {
	two := decimal.NewFromInt(2)
	return bankroll.
		Mul(decimal.NewFromFloat(stakePercent)).
		Div(decimal.NewFromInt(100)).
		Mul(two).
		Add(decimal.NewFromInt(1)).
		Floor().
		Div(two)
}

// opportunityID derives a stable id so the same candidate yields the same opportunity on every run
func opportunityID(c models.Candidate) uuid.UUID {
	key := string(c.League) + "|" + c.EventID + "|" + c.Description + "|" +
		c.RetailMarketID + "|" + c.RetailSelectionID + "|" + strconv.Itoa(c.RetailPrice)
	return uuid.NewSHA1(opportunityNamespace, []byte(key))
}
