package fetch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/value-bet-service/internal/models"
	"github.com/cypherlabdev/value-bet-service/internal/provider/pinnacle"
)

const defaultPinnacleURL = "https://guest.api.arcadia.pinnacle.com/0.1"

// PinnacleConfig holds reference-book credentials and transport settings
type PinnacleConfig struct {
	ClientConfig
	APIKey     string
	DeviceUUID string
}

// PinnacleClient fetches matchups and straight markets from the Arcadia guest API
type PinnacleClient struct {
	client  *jsonClient
	baseURL string
	headers http.Header
	logger  zerolog.Logger
}

// NewPinnacleClient creates a new reference-book client
func NewPinnacleClient(cfg PinnacleConfig, logger zerolog.Logger) *PinnacleClient {
	cc := cfg.ClientConfig.withDefaults(defaultPinnacleURL)

	headers := http.Header{}
	headers.Set("Accept", "application/json")
	headers.Set("Content-Type", "application/json")
	headers.Set("Referer", "https://www.pinnacle.com/")
	headers.Set("User-Agent", userAgent)
	headers.Set("X-API-Key", cfg.APIKey)
	headers.Set("X-Device-UUID", cfg.DeviceUUID)

	return &PinnacleClient{
		client:  newJSONClient(cc),
		baseURL: cc.BaseURL,
		headers: headers,
		logger:  logger.With().Str("component", "pinnacle_client").Logger(),
	}
}

// Snapshot fetches one league's matchups and markets. Both requests must succeed,
// otherwise the error is returned and no partial snapshot is produced.
func (c *PinnacleClient) Snapshot(ctx context.Context, info models.LeagueInfo) (*pinnacle.Snapshot, error) {
	var matchups []pinnacle.Matchup
	url := fmt.Sprintf("%s/leagues/%d/matchups?brandId=0", c.baseURL, info.PinnacleID)
	if err := c.client.get(ctx, url, c.headers, &matchups); err != nil {
		return nil, fmt.Errorf("fetch %s matchups: %w", info.League, err)
	}

	var markets []pinnacle.Market
	url = fmt.Sprintf("%s/leagues/%d/markets/straight", c.baseURL, info.PinnacleID)
	if err := c.client.get(ctx, url, c.headers, &markets); err != nil {
		return nil, fmt.Errorf("fetch %s markets: %w", info.League, err)
	}

	c.logger.Debug().
		Str("league", string(info.League)).
		Int("matchups", len(matchups)).
		Int("markets", len(markets)).
		Msg("fetched reference snapshot")

	return &pinnacle.Snapshot{Matchups: matchups, Markets: markets}, nil
}
