package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cypherlabdev/value-bet-service/internal/export"
	"github.com/cypherlabdev/value-bet-service/internal/fetch"
	"github.com/cypherlabdev/value-bet-service/internal/metrics"
	"github.com/cypherlabdev/value-bet-service/internal/models"
	"github.com/cypherlabdev/value-bet-service/internal/provider/fanduel"
	"github.com/cypherlabdev/value-bet-service/internal/provider/pinnacle"
	"github.com/cypherlabdev/value-bet-service/internal/reconciler"
	"github.com/cypherlabdev/value-bet-service/pkg/detector"
)

// ErrUnknownLeague is returned for leagues outside the catalog
var ErrUnknownLeague = errors.New("unknown league")

// maxParallelFetches bounds concurrent league fetches during a scan
const maxParallelFetches = 4

// Collaborators groups the optional side effects of a scan. Nil members are skipped.
type Collaborators struct {
	BetLog    BetLog
	Cache     Cache
	Publisher Publisher
	Exporter  Exporter
}

// ScanService runs fetch -> normalize -> reconcile -> detect -> dedup for each league
type ScanService struct {
	fetcher    Fetcher
	collab     Collaborators
	pinnacle   *pinnacle.Normalizer
	fanduel    *fanduel.Normalizer
	reconciler *reconciler.Reconciler
	detector   *detector.Detector
	metrics    *metrics.Metrics
	now        func() time.Time
	logger     zerolog.Logger
}

// NewScanService creates a new scan service
func NewScanService(
	fetcher Fetcher,
	collab Collaborators,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *ScanService {
	return &ScanService{
		fetcher:    fetcher,
		collab:     collab,
		pinnacle:   pinnacle.NewNormalizer(logger),
		fanduel:    fanduel.NewNormalizer(logger),
		reconciler: reconciler.NewReconciler(logger),
		detector:   detector.NewDetector(logger),
		metrics:    m,
		now:        time.Now,
		logger:     logger.With().Str("component", "scan_service").Logger(),
	}
}

// Evaluate is the pure engine pipeline for one league: it has no side effects beyond metrics
func (s *ScanService) Evaluate(
	league models.League,
	reference *pinnacle.Snapshot,
	retail *fanduel.Page,
	policy models.SizingPolicy,
) ([]models.Opportunity, error) {
	info, ok := models.LookupLeague(league)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLeague, league)
	}

	refEvents := s.pinnacle.Normalize(reference, info)
	retailEvents := s.fanduel.Normalize(retail, info)
	candidates := s.reconciler.Reconcile(refEvents, retailEvents)

	opps, err := s.detector.Detect(candidates, policy)
	if err != nil {
		return nil, fmt.Errorf("detection failed: %w", err)
	}

	l := string(league)
	s.metrics.EventsNormalized.WithLabelValues(l, "pinnacle").Add(float64(len(refEvents)))
	s.metrics.EventsNormalized.WithLabelValues(l, "fanduel").Add(float64(len(retailEvents)))
	s.metrics.CandidatesTotal.WithLabelValues(l).Add(float64(len(candidates)))

	best := 0.0
	for _, opp := range opps {
		s.metrics.OpportunitiesTotal.WithLabelValues(l, string(opp.Kind)).Inc()
		if opp.EdgePercent > best {
			best = opp.EdgePercent
		}
	}
	s.metrics.BestEdge.WithLabelValues(l).Set(best)

	s.logger.Debug().
		Str("league", l).
		Int("reference_events", len(refEvents)).
		Int("retail_events", len(retailEvents)).
		Int("candidates", len(candidates)).
		Int("opportunities", len(opps)).
		Msg("evaluated league")

	return opps, nil
}

// Process evaluates one league snapshot, caches the full set and returns the opportunities
// not already flagged today or yesterday. New ones are recorded, exported and published.
// Collaborator failures are logged and never drop the result.
func (s *ScanService) Process(
	ctx context.Context,
	snap fetch.LeagueSnapshot,
	policy models.SizingPolicy,
	batchID string,
) (*models.LeagueOpportunities, error) {
	return s.process(ctx, snap, policy, batchID, "kafka")
}

func (s *ScanService) process(
	ctx context.Context,
	snap fetch.LeagueSnapshot,
	policy models.SizingPolicy,
	batchID, source string,
) (*models.LeagueOpportunities, error) {
	l := string(snap.League)
	s.metrics.ScansTotal.WithLabelValues(l, source).Inc()
	if snap.Reference == nil {
		s.metrics.FetchFailures.WithLabelValues(l, "pinnacle").Inc()
	}
	if snap.Retail == nil {
		s.metrics.FetchFailures.WithLabelValues(l, "fanduel").Inc()
	}

	opps, err := s.Evaluate(snap.League, snap.Reference, snap.Retail, policy)
	if err != nil {
		return nil, err
	}

	now := s.now()
	full := &models.LeagueOpportunities{
		League:        snap.League,
		Opportunities: opps,
		BatchID:       batchID,
		EvaluatedAt:   now.UTC(),
	}
	if s.collab.Cache != nil {
		if err := s.collab.Cache.SetLeague(ctx, full); err != nil {
			s.logger.Warn().Err(err).Str("league", l).Msg("failed to cache league opportunities")
		}
	}

	fresh := &models.LeagueOpportunities{
		League:        snap.League,
		Opportunities: s.flagNew(ctx, opps, now),
		BatchID:       batchID,
		EvaluatedAt:   full.EvaluatedAt,
	}

	if s.collab.Publisher != nil && len(fresh.Opportunities) > 0 {
		if err := s.collab.Publisher.Publish(ctx, fresh); err != nil {
			s.logger.Warn().Err(err).Str("league", l).Msg("failed to publish opportunities")
		}
	}

	s.logger.Info().
		Str("league", l).
		Str("batch_id", batchID).
		Int("input_count", len(opps)).
		Int("output_count", len(fresh.Opportunities)).
		Msg("processed league")

	return fresh, nil
}

// flagNew drops opportunities the bet log has already seen and records the rest
func (s *ScanService) flagNew(ctx context.Context, opps []models.Opportunity, now time.Time) []models.Opportunity {
	out := make([]models.Opportunity, 0, len(opps))
	for _, opp := range opps {
		if s.collab.BetLog != nil {
			seen, err := s.collab.BetLog.Seen(ctx, opp.Description, now)
			if err != nil {
				s.logger.Warn().Err(err).Str("description", opp.Description).Msg("bet log lookup failed")
			} else if seen {
				s.metrics.DuplicatesTotal.WithLabelValues(string(opp.League)).Inc()
				continue
			}
			if err := s.collab.BetLog.Record(ctx, opp.Description, now); err != nil {
				s.logger.Warn().Err(err).Str("description", opp.Description).Msg("bet log record failed")
			}
		}

		if s.collab.Exporter != nil {
			rec := export.Record{
				Date:        now,
				Description: opp.Description,
				RetailPrice: opp.RetailPrice,
				StakeAmount: opp.StakeAmount,
			}
			if err := s.collab.Exporter.Append(ctx, rec); err != nil {
				s.logger.Warn().Err(err).Str("description", opp.Description).Msg("export failed")
			}
		}

		out = append(out, opp)
	}
	return out
}

// Scan fetches every league in parallel, then processes them in the given order.
// The result holds the newly flagged opportunities of all leagues.
func (s *ScanService) Scan(ctx context.Context, leagues []models.League, policy models.SizingPolicy) ([]models.Opportunity, error) {
	if err := detector.ValidatePolicy(policy); err != nil {
		return nil, fmt.Errorf("invalid sizing policy: %w", err)
	}

	infos := make([]models.LeagueInfo, len(leagues))
	for i, league := range leagues {
		info, ok := models.LookupLeague(league)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLeague, league)
		}
		infos[i] = info
	}

	start := s.now()
	batchID := uuid.NewString()

	snaps := make([]fetch.LeagueSnapshot, len(infos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, info := range infos {
		i, info := i, info
		g.Go(func() error {
			snaps[i] = s.fetcher.Fetch(gctx, info)
			return nil
		})
	}
	// fetchers report failures through nil payloads, so Wait only surfaces cancellation
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scan canceled: %w", err)
	}

	var out []models.Opportunity
	for _, snap := range snaps {
		set, err := s.process(ctx, snap, policy, batchID, "scan")
		if err != nil {
			return nil, fmt.Errorf("league %s: %w", snap.League, err)
		}
		out = append(out, set.Opportunities...)
	}

	s.metrics.ScanDuration.Observe(s.now().Sub(start).Seconds())

	s.logger.Info().
		Str("batch_id", batchID).
		Int("leagues", len(leagues)).
		Int("opportunities", len(out)).
		Msg("scan complete")

	return out, nil
}

// LatestByLeague returns the cached opportunity set of a league
func (s *ScanService) LatestByLeague(ctx context.Context, league models.League) (*models.LeagueOpportunities, error) {
	if _, ok := models.LookupLeague(league); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLeague, league)
	}
	if s.collab.Cache == nil {
		return nil, errors.New("no cache configured")
	}

	set, err := s.collab.Cache.GetLeague(ctx, league)
	if err != nil {
		return nil, fmt.Errorf("failed to read league %s: %w", league, err)
	}
	return set, nil
}
