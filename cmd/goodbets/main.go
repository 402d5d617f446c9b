package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/cypherlabdev/value-bet-service/internal/betlog"
	"github.com/cypherlabdev/value-bet-service/internal/config"
	"github.com/cypherlabdev/value-bet-service/internal/export"
	"github.com/cypherlabdev/value-bet-service/internal/fetch"
	"github.com/cypherlabdev/value-bet-service/internal/metrics"
	"github.com/cypherlabdev/value-bet-service/internal/present"
	"github.com/cypherlabdev/value-bet-service/internal/service"
)

const defaultBankroll = 1000

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [bankroll] [unit_divisor]\n", os.Args[0])
		flag.PrintDefaults()
	}
	configPath := flag.String("config", "", "path to config file")
	method := flag.String("method", "", "devig method: power|multiplicative (overrides config)")
	record := flag.Bool("record", false, "hide bets already flagged today or yesterday, record and export the rest")
	today := flag.Bool("today", false, "list bets already flagged today and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	flag.Parse()

	bankroll, divisor, err := parseArgs(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}
	if *method != "" {
		cfg.Sizing.Method = *method
	}
	cfg.Sizing.Bankroll = bankroll.InexactFloat64()
	cfg.Sizing.UnitDivisor = divisor.InexactFloat64()

	logger := setupLogger(cfg.Logging)

	policy, err := cfg.Sizing.ToPolicy()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid sizing")
	}
	leagues, err := cfg.EnabledLeagues()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid league list")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var betLog *betlog.SQLiteBetLog
	if *record || *today {
		betLog, err = betlog.NewSQLiteBetLog(cfg.BetLog.Path, logger)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.BetLog.Path).Msg("failed to open bet log")
		}
		defer betLog.Close()
	}

	if *today {
		if err := listFlagged(ctx, betLog, os.Stdout, time.Now()); err != nil {
			logger.Fatal().Err(err).Msg("failed to list flagged bets")
		}
		return
	}

	var collab service.Collaborators
	if *record {
		collab.BetLog = betLog

		if cfg.Export.Enabled {
			collab.Exporter = export.NewExporter(cfg.Export.ToExport(), cfg.Export.TokenSource(), logger)
		}
	}

	fetcher := fetch.NewFetcher(
		fetch.NewPinnacleClient(cfg.Providers.Pinnacle.ToFetch(), logger),
		fetch.NewFanDuelClient(cfg.Providers.FanDuel.ToFetch(), logger),
		logger,
	)
	svc := service.NewScanService(fetcher, collab, metrics.New(prometheus.NewRegistry()), logger)

	opps, err := svc.Scan(ctx, leagues, policy)
	if err != nil {
		logger.Fatal().Err(err).Msg("scan failed")
	}

	if err := present.Table(os.Stdout, present.Rank(opps), cfg.Sizing.UnitSize()); err != nil {
		logger.Fatal().Err(err).Msg("failed to render table")
	}
}

// flaggedLister lists the bet log entries of one day
type flaggedLister interface {
	Entries(ctx context.Context, date time.Time) ([]string, error)
}

// listFlagged prints the bets flagged on now's date, one per line
func listFlagged(ctx context.Context, bets flaggedLister, w io.Writer, now time.Time) error {
	entries, err := bets.Entries(ctx, now)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, err := fmt.Fprintf(w, "no bets flagged on %s\n", now.Format(betlog.DateLayout))
		return err
	}
	for i, e := range entries {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, e); err != nil {
			return err
		}
	}
	return nil
}

// parseArgs reads the optional bankroll and unit divisor positional arguments
func parseArgs(args []string) (bankroll, divisor decimal.Decimal, err error) {
	bankroll = decimal.NewFromInt(defaultBankroll)
	if len(args) > 2 {
		return bankroll, divisor, fmt.Errorf("expected at most 2 arguments, got %d", len(args))
	}

	if len(args) > 0 {
		bankroll, err = decimal.NewFromString(args[0])
		if err != nil {
			return bankroll, divisor, fmt.Errorf("invalid bankroll %q: %w", args[0], err)
		}
		if !bankroll.IsPositive() {
			return bankroll, divisor, fmt.Errorf("bankroll must be positive, got %s", args[0])
		}
	}

	if len(args) > 1 {
		divisor, err = decimal.NewFromString(args[1])
		if err != nil {
			return bankroll, divisor, fmt.Errorf("invalid unit divisor %q: %w", args[1], err)
		}
		if !divisor.IsPositive() {
			return bankroll, divisor, fmt.Errorf("unit divisor must be positive, got %s", args[1])
		}
	}

	return bankroll, divisor, nil
}

// setupLogger writes console logs to stderr, warnings and above unless debugging
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if level < zerolog.WarnLevel && level != zerolog.DebugLevel {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	return log.Logger.With().Str("service", "goodbets").Logger()
}
