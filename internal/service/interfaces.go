package service

//go:generate mockgen -destination=../mocks/mock_service.go -package=mocks github.com/cypherlabdev/value-bet-service/internal/service Fetcher,BetLog,Cache,Publisher,Exporter,Processor

import (
	"context"
	"time"

	"github.com/cypherlabdev/value-bet-service/internal/export"
	"github.com/cypherlabdev/value-bet-service/internal/fetch"
	"github.com/cypherlabdev/value-bet-service/internal/models"
)

// Fetcher acquires both provider payloads for a league.
// A failed acquisition leaves the matching payload nil.
type Fetcher interface {
	Fetch(ctx context.Context, info models.LeagueInfo) fetch.LeagueSnapshot
}

// BetLog remembers which opportunities were already flagged
type BetLog interface {
	Seen(ctx context.Context, description string, date time.Time) (bool, error)
	Record(ctx context.Context, description string, date time.Time) error
}

// Cache stores the latest opportunity set per league
type Cache interface {
	SetLeague(ctx context.Context, set *models.LeagueOpportunities) error
	GetLeague(ctx context.Context, league models.League) (*models.LeagueOpportunities, error)
	Ping(ctx context.Context) error
	Close() error
}

// Publisher fans newly flagged opportunities out to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, set *models.LeagueOpportunities) error
}

// Exporter appends flagged bets to an external record
type Exporter interface {
	Append(ctx context.Context, rec export.Record) error
}

// Processor runs one league snapshot through the pipeline
type Processor interface {
	Process(ctx context.Context, snap fetch.LeagueSnapshot, policy models.SizingPolicy, batchID string) (*models.LeagueOpportunities, error)
}
