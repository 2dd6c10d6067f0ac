package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/jose-deblas/dashboardcwv/internal/api"
	"github.com/jose-deblas/dashboardcwv/internal/catalog"
	"github.com/jose-deblas/dashboardcwv/internal/config"
	"github.com/jose-deblas/dashboardcwv/internal/logging"
	"github.com/jose-deblas/dashboardcwv/internal/middleware"
	"github.com/jose-deblas/dashboardcwv/internal/runstate"
	"github.com/jose-deblas/dashboardcwv/internal/vitals"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.ServiceName, cfg.Env)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close database")
		}
	}()

	coordinator, err := runstate.NewCoordinator(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() {
		if err := coordinator.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis connection")
		}
	}()

	handler := api.NewAPI(coordinator, vitals.NewPostgresStore(db), catalog.NewPostgresRepository(db))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: middleware.MetricsMiddleware(handler),
	}

	go func() {
		logger.Info().Int("port", cfg.Port).Msg("report api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down report api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
}
