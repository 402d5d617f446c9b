package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/value-bet-service/internal/models"
	"github.com/cypherlabdev/value-bet-service/internal/provider/fanduel"
)

const defaultFanDuelURL = "https://sbapi.ny.sportsbook.fanduel.com/api"

// FanDuelConfig holds retail-book credentials and transport settings
type FanDuelConfig struct {
	ClientConfig
	APIKey   string
	Timezone string
}

// FanDuelClient fetches content-managed and competition pages from the sportsbook API
type FanDuelClient struct {
	client   *jsonClient
	baseURL  string
	apiKey   string
	timezone string
	headers  http.Header
	logger   zerolog.Logger
}

// NewFanDuelClient creates a new retail-book client
func NewFanDuelClient(cfg FanDuelConfig, logger zerolog.Logger) *FanDuelClient {
	cc := cfg.ClientConfig.withDefaults(defaultFanDuelURL)
	if cfg.Timezone == "" {
		cfg.Timezone = "America/New_York"
	}

	headers := http.Header{}
	headers.Set("Accept", "application/json")
	headers.Set("Origin", "https://sportsbook.fanduel.com")
	headers.Set("Referer", "https://sportsbook.fanduel.com/")
	headers.Set("User-Agent", userAgent)

	return &FanDuelClient{
		client:   newJSONClient(cc),
		baseURL:  cc.BaseURL,
		apiKey:   cfg.APIKey,
		timezone: cfg.Timezone,
		headers:  headers,
		logger:   logger.With().Str("component", "fanduel_client").Logger(),
	}
}

// PageURL builds the request URL for a league's page
func (c *FanDuelClient) PageURL(info models.LeagueInfo) string {
	q := url.Values{}
	q.Set("_ak", c.apiKey)

	var path string
	switch info.FanDuel.Page {
	case models.FanDuelCompetitionPage:
		path = "/competition-page"
		q.Set("eventTypeId", info.FanDuel.EventTypeID)
		q.Set("competitionId", info.FanDuel.CompetitionID)
	default:
		path = "/content-managed-page"
		q.Set("page", "CUSTOM")
		q.Set("customPageId", info.FanDuel.CustomPageID)
		q.Set("pbHorizontal", "false")
		q.Set("timezone", c.timezone)
	}

	return c.baseURL + path + "?" + q.Encode()
}

// Page fetches one league's page
func (c *FanDuelClient) Page(ctx context.Context, info models.LeagueInfo) (*fanduel.Page, error) {
	var page fanduel.Page
	if err := c.client.get(ctx, c.PageURL(info), c.headers, &page); err != nil {
		return nil, fmt.Errorf("fetch %s page: %w", info.League, err)
	}

	c.logger.Debug().
		Str("league", string(info.League)).
		Int("events", len(page.Attachments.Events)).
		Int("markets", len(page.Attachments.Markets)).
		Msg("fetched retail page")

	return &page, nil
}
