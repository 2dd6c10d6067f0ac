package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/jose-deblas/dashboardcwv/internal/catalog"
	"github.com/jose-deblas/dashboardcwv/internal/collector"
	"github.com/jose-deblas/dashboardcwv/internal/config"
	"github.com/jose-deblas/dashboardcwv/internal/logging"
	"github.com/jose-deblas/dashboardcwv/internal/notify"
	"github.com/jose-deblas/dashboardcwv/internal/pagespeed"
	"github.com/jose-deblas/dashboardcwv/internal/runstate"
	"github.com/jose-deblas/dashboardcwv/internal/vitals"
)

// Exit codes: 0 run completed without failures, 1 run completed with at
// least one failed URL, 2 fatal error before the per-URL loop.
const (
	exitOK    = 0
	exitDirty = 1
	exitFatal = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dateStr := flag.String("date", "", "execution date as YYYY-MM-DD (defaults to today)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return exitFatal
	}

	logger := logging.New(cfg.ServiceName, cfg.Env)

	executionDate := time.Now().UTC().Truncate(24 * time.Hour)
	if *dateStr != "" {
		executionDate, err = time.Parse("2006-01-02", *dateStr)
		if err != nil {
			logger.Error().Err(err).Str("date", *dateStr).Msg("invalid execution date")
			return exitFatal
		}
	}

	auth := pagespeed.NewAuthProvider(cfg.PageSpeed.APIKey)
	if !auth.IsConfigured() {
		logger.Error().Msg("pagespeed api key not configured")
		return exitFatal
	}

	db, err := openDB(cfg.DatabaseURL)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to database")
		return exitFatal
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close database")
		}
	}()

	coordinator, err := runstate.NewCoordinator(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Error().Err(err).Msg("failed to connect to redis")
		return exitFatal
	}
	defer func() {
		if err := coordinator.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis connection")
		}
	}()

	ctx := context.Background()

	locked, err := coordinator.AcquireLock(ctx, executionDate, cfg.Collector.LockTTL)
	if err != nil {
		logger.Error().Err(err).Msg("failed to acquire run lock")
		return exitFatal
	}
	if !locked {
		logger.Error().
			Str("execution_date", executionDate.Format("2006-01-02")).
			Msg("another collection run is already in progress for this date")
		return exitFatal
	}
	defer func() {
		if err := coordinator.ReleaseLock(ctx, executionDate); err != nil {
			logger.Warn().Err(err).Msg("failed to release run lock")
		}
	}()

	policy := pagespeed.RetryPolicy{
		MaxRetries:        cfg.PageSpeed.MaxRetries,
		InitialBackoff:    cfg.PageSpeed.InitialBackoff,
		BackoffMultiplier: cfg.PageSpeed.BackoffMultiplier,
		Timeout:           cfg.PageSpeed.Timeout,
	}
	client := pagespeed.NewClient(auth, policy, logger)
	fetcher := pagespeed.NewFetcher(client, logger)

	coll := collector.New(
		catalog.NewPostgresRepository(db),
		vitals.NewPostgresStore(db),
		fetcher,
		cfg.Collector.Workers,
		logger,
	)

	summary, err := coll.Run(ctx, executionDate)
	if err != nil {
		logger.Error().Err(err).Msg("collection run aborted")
		return exitFatal
	}

	if err := coordinator.PublishSummary(ctx, summary); err != nil {
		logger.Warn().Err(err).Msg("failed to publish run summary")
	}

	if cfg.Notify.Enabled {
		notifier := notify.NewEmailNotifier(
			cfg.Notify.APIKey,
			cfg.Notify.To,
			cfg.Notify.FromName,
			cfg.Notify.FromAddress,
			logger,
		)
		if err := notifier.NotifyFailures(summary); err != nil {
			logger.Warn().Err(err).Msg("failed to send failure report")
		}
	}

	for _, r := range summary.FailedResults() {
		logger.Error().
			Int64("url_id", r.URLID).
			Str("url", r.URL).
			Str("error", r.Error).
			Msg("url failed")
	}

	if summary.Failed > 0 {
		return exitDirty
	}
	return exitOK
}

func openDB(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}
