package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cypherlabdev/value-bet-service/internal/betlog"
	"github.com/cypherlabdev/value-bet-service/internal/cache"
	"github.com/cypherlabdev/value-bet-service/internal/config"
	"github.com/cypherlabdev/value-bet-service/internal/export"
	"github.com/cypherlabdev/value-bet-service/internal/fetch"
	httpHandler "github.com/cypherlabdev/value-bet-service/internal/handler/http"
	"github.com/cypherlabdev/value-bet-service/internal/messaging"
	"github.com/cypherlabdev/value-bet-service/internal/metrics"
	"github.com/cypherlabdev/value-bet-service/internal/models"
	"github.com/cypherlabdev/value-bet-service/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("starting value-bet-service")

	// Resolve sizing policy and leagues
	policy, err := cfg.Sizing.ToPolicy()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid sizing config")
	}
	leagues, err := cfg.EnabledLeagues()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid league list")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Register metrics
	m := metrics.New(prometheus.DefaultRegisterer)

	var collab service.Collaborators

	// Open bet log
	betLog, err := betlog.NewSQLiteBetLog(cfg.BetLog.Path, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.BetLog.Path).Msg("failed to open bet log")
	}
	defer betLog.Close()
	collab.BetLog = betLog

	// Create Redis cache
	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache = cache.NewRedisCache(
			cache.RedisCacheConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				TTL:      cfg.Redis.TTL,
			},
			logger,
		)
		defer redisCache.Close()

		// Test Redis connection
		if err := redisCache.Ping(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		collab.Cache = redisCache
	}

	// Create Kafka publisher
	if cfg.Kafka.Enabled {
		publisher := messaging.NewKafkaPublisher(
			messaging.KafkaPublisherConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.OpportunitiesTopic,
			},
			logger,
		)
		defer publisher.Close()
		collab.Publisher = publisher
	}

	// Create sheet exporter
	if cfg.Export.Enabled {
		collab.Exporter = export.NewExporter(cfg.Export.ToExport(), cfg.Export.TokenSource(), logger)
	}

	// Create provider fetcher
	fetcher := fetch.NewFetcher(
		fetch.NewPinnacleClient(cfg.Providers.Pinnacle.ToFetch(), logger),
		fetch.NewFanDuelClient(cfg.Providers.FanDuel.ToFetch(), logger),
		logger,
	)

	// Create scan service layer
	scanService := service.NewScanService(fetcher, collab, m, logger)
	logger.Info().Int("leagues", len(leagues)).Msg("scan service initialized")

	// Create Kafka consumer
	if cfg.Kafka.Enabled {
		consumer := messaging.NewKafkaConsumer(
			messaging.KafkaConsumerConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.SnapshotTopic,
				GroupID: cfg.Kafka.GroupID,
			},
			scanService,
			policy,
			logger,
		)
		defer consumer.Close()

		// Start Kafka consumer in goroutine
		go func() {
			if err := consumer.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("Kafka consumer failed")
			}
		}()
	}

	// Start periodic scans
	if cfg.Scan.Enabled {
		go runScans(ctx, scanService, leagues, policy, cfg.Scan.Interval, logger)
	}

	// Initialize HTTP handler
	opportunityHandler := httpHandler.NewOpportunityHandler(scanService, logger)

	// Setup HTTP server routes
	mux := http.NewServeMux()

	// Health and monitoring endpoints
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		readyHandler(w, r, redisCache)
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Register API routes
	opportunityHandler.RegisterRoutes(mux)
	logger.Info().Msg("API routes registered")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start HTTP server in goroutine
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down gracefully...")

	// Cancel context to stop the scan loop and consumer
	cancel()

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logger.Info().Msg("shutdown complete")
}

// configPath honours VALUE_BET_CONFIG and skips the default file when it is absent
func configPath() string {
	if p := os.Getenv("VALUE_BET_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("config/config.yaml"); err == nil {
		return "config/config.yaml"
	}
	return ""
}

// runScans scans immediately, then on every tick until ctx is done
func runScans(
	ctx context.Context,
	svc *service.ScanService,
	leagues []models.League,
	policy models.SizingPolicy,
	interval time.Duration,
	logger zerolog.Logger,
) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		opps, err := svc.Scan(ctx, leagues, policy)
		if err != nil {
			logger.Error().Err(err).Msg("scan failed")
		} else {
			logger.Info().Int("new_opportunities", len(opps)).Msg("scan finished")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set format
	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return log.Logger.With().Str("service", "value-bet-service").Logger()
}

// healthHandler returns 200 if service is running
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// readyHandler returns 200 if service is ready to accept traffic
func readyHandler(w http.ResponseWriter, r *http.Request, cache *cache.RedisCache) {
	// Check Redis connection when the cache is enabled
	if cache != nil {
		if err := cache.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Redis unavailable"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
