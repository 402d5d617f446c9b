package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/value-bet-service/internal/cache"
	"github.com/cypherlabdev/value-bet-service/internal/models"
	"github.com/cypherlabdev/value-bet-service/internal/present"
)

// LatestReader serves the most recent opportunity set of a league
type LatestReader interface {
	LatestByLeague(ctx context.Context, league models.League) (*models.LeagueOpportunities, error)
}

// OpportunityHandler handles HTTP requests for detected opportunities
type OpportunityHandler struct {
	service LatestReader
	logger  zerolog.Logger
}

// NewOpportunityHandler creates a new opportunity HTTP handler
func NewOpportunityHandler(service LatestReader, logger zerolog.Logger) *OpportunityHandler {
	return &OpportunityHandler{
		service: service,
		logger:  logger.With().Str("component", "opportunity_handler").Logger(),
	}
}

// RegisterRoutes registers HTTP routes with the provided mux
func (h *OpportunityHandler) RegisterRoutes(mux *http.ServeMux) {
	// GET /api/v1/opportunities - list supported leagues
	mux.HandleFunc("/api/v1/opportunities", h.handleListLeagues)

	// GET /api/v1/opportunities/:league - latest ranked opportunities for a league
	mux.HandleFunc("/api/v1/opportunities/", h.handleGetLeague)
}

// handleListLeagues handles GET /api/v1/opportunities
func (h *OpportunityHandler) handleListLeagues(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"leagues": models.Leagues(),
	})
}

// handleGetLeague handles GET /api/v1/opportunities/:league
func (h *OpportunityHandler) handleGetLeague(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.errorResponse(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/opportunities/"), "/")
	if path == "" || strings.Contains(path, "/") {
		h.errorResponse(w, http.StatusBadRequest, "invalid path: expected /api/v1/opportunities/:league")
		return
	}

	league, err := models.ParseLeague(path)
	if err != nil {
		h.errorResponse(w, http.StatusNotFound, err.Error())
		return
	}

	set, err := h.service.LatestByLeague(r.Context(), league)
	if errors.Is(err, cache.ErrNotFound) {
		h.errorResponse(w, http.StatusNotFound, "league not evaluated yet")
		return
	} else if err != nil {
		h.logger.Error().
			Err(err).
			Str("league", string(league)).
			Msg("failed to retrieve league opportunities")
		h.errorResponse(w, http.StatusInternalServerError, "failed to retrieve opportunities")
		return
	}

	h.jsonResponse(w, http.StatusOK, ToLeagueResponse(set))
}

// jsonResponse writes a JSON response
func (h *OpportunityHandler) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes a JSON error response
func (h *OpportunityHandler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.jsonResponse(w, status, map[string]string{
		"error": message,
	})
}

// OpportunityResponse represents one opportunity in the API response
type OpportunityResponse struct {
	ID              string  `json:"id"`
	EventName       string  `json:"event_name"`
	Kind            string  `json:"kind"`
	Description     string  `json:"description"`
	ReferencePrice  int     `json:"reference_price"`
	RetailPrice     int     `json:"retail_price"`
	RetailDecimal   float64 `json:"retail_decimal"`
	ReferenceMargin float64 `json:"reference_margin"`
	FairProbability float64 `json:"fair_probability"`
	EdgePercent     float64 `json:"edge_percent"`
	Confidence      float64 `json:"confidence"`
	StakePercent    float64 `json:"stake_percent"`
	StakeAmount     string  `json:"stake_amount"`
	Highlight       bool    `json:"highlight"`
	BetslipURL      string  `json:"betslip_url"`
}

// LeagueResponse represents the API response for a league
type LeagueResponse struct {
	League        string                `json:"league"`
	BatchID       string                `json:"batch_id"`
	EvaluatedAt   string                `json:"evaluated_at"`
	Count         int                   `json:"count"`
	Opportunities []OpportunityResponse `json:"opportunities"`
}

// ToLeagueResponse converts a cached set to API response format, ranked by stake
func ToLeagueResponse(set *models.LeagueOpportunities) *LeagueResponse {
	ranked := present.Rank(set.Opportunities)

	resp := &LeagueResponse{
		League:        string(set.League),
		BatchID:       set.BatchID,
		EvaluatedAt:   set.EvaluatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Count:         len(ranked),
		Opportunities: make([]OpportunityResponse, 0, len(ranked)),
	}
	for _, opp := range ranked {
		resp.Opportunities = append(resp.Opportunities, OpportunityResponse{
			ID:              opp.ID.String(),
			EventName:       opp.EventName,
			Kind:            string(opp.Kind),
			Description:     opp.Description,
			ReferencePrice:  opp.ReferencePrice,
			RetailPrice:     opp.RetailPrice,
			RetailDecimal:   opp.RetailDecimal,
			ReferenceMargin: opp.ReferenceMargin,
			FairProbability: opp.FairProbability,
			EdgePercent:     opp.EdgePercent,
			Confidence:      opp.Confidence,
			StakePercent:    opp.StakePercent,
			StakeAmount:     opp.StakeAmount.StringFixed(2),
			Highlight:       opp.Highlight,
			BetslipURL:      present.BetslipURL(opp.RetailMarketID, opp.RetailSelectionID),
		})
	}
	return resp
}
