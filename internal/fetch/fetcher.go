package fetch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/value-bet-service/internal/models"
	"github.com/cypherlabdev/value-bet-service/internal/provider/fanduel"
	"github.com/cypherlabdev/value-bet-service/internal/provider/pinnacle"
)

// LeagueSnapshot is both providers' payloads for one league. A provider that could not be
// fetched contributes a nil payload, which normalizes to no events.
type LeagueSnapshot struct {
	League    models.League
	Reference *pinnacle.Snapshot
	Retail    *fanduel.Page
	FetchedAt time.Time
}

// Fetcher acquires both providers' payloads for a league
type Fetcher struct {
	pinnacle *PinnacleClient
	fanduel  *FanDuelClient
	logger   zerolog.Logger
}

// NewFetcher creates a new provider fetcher
func NewFetcher(p *PinnacleClient, f *FanDuelClient, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		pinnacle: p,
		fanduel:  f,
		logger:   logger.With().Str("component", "fetcher").Logger(),
	}
}

// Fetch never fails: acquisition errors are logged and the provider's payload is left nil
func (f *Fetcher) Fetch(ctx context.Context, info models.LeagueInfo) LeagueSnapshot {
	snap := LeagueSnapshot{League: info.League, FetchedAt: time.Now().UTC()}

	ref, err := f.pinnacle.Snapshot(ctx, info)
	if err != nil {
		f.logger.Warn().Err(err).Str("league", string(info.League)).Msg("reference fetch failed")
	} else {
		snap.Reference = ref
	}

	retail, err := f.fanduel.Page(ctx, info)
	if err != nil {
		f.logger.Warn().Err(err).Str("league", string(info.League)).Msg("retail fetch failed")
	} else {
		snap.Retail = retail
	}

	return snap
}
