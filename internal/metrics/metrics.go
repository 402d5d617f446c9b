package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "value_bet"

// Metrics holds the scan pipeline collectors
type Metrics struct {
	ScansTotal         *prometheus.CounterVec
	FetchFailures      *prometheus.CounterVec
	EventsNormalized   *prometheus.CounterVec
	CandidatesTotal    *prometheus.CounterVec
	OpportunitiesTotal *prometheus.CounterVec
	DuplicatesTotal    *prometheus.CounterVec
	ScanDuration       prometheus.Histogram
	BestEdge           *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "league_scans_total",
			Help:      "League evaluations run, by source (scan or kafka).",
		}, []string{"league", "source"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Provider payloads that could not be acquired.",
		}, []string{"league", "provider"}),
		EventsNormalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_normalized_total",
			Help:      "Events produced by the provider normalizers.",
		}, []string{"league", "provider"}),
		CandidatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Reconciled outcome pairs.",
		}, []string{"league"}),
		OpportunitiesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opportunities_total",
			Help:      "Positive-edge opportunities detected.",
		}, []string{"league", "kind"}),
		DuplicatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_suppressed_total",
			Help:      "Opportunities dropped because the bet log already had them.",
		}, []string{"league"}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Wall time of a full multi-league scan.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
		BestEdge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "best_edge_percent",
			Help:      "Largest edge found in the latest evaluation of a league.",
		}, []string{"league"}),
	}

	reg.MustRegister(
		m.ScansTotal,
		m.FetchFailures,
		m.EventsNormalized,
		m.CandidatesTotal,
		m.OpportunitiesTotal,
		m.DuplicatesTotal,
		m.ScanDuration,
		m.BestEdge,
	)
	return m
}
