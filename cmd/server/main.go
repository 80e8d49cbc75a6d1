package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"buffet-backend/internal/config"
	"buffet-backend/internal/database"
	"buffet-backend/internal/logging"
	"buffet-backend/internal/metrics"
	"buffet-backend/internal/router"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logging.Init(cfg.AppEnv, cfg.LogLevel)

	// amounts go out as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	if cfg.UsesDefaultDSN() {
		log.Warn().Msg("DATABASE_DSN not set, using the local development database")
	}

	store, err := database.Open(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("closing database")
		}
	}()

	app := router.New(cfg, store, metrics.New())

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("env", cfg.AppEnv).Msg("server listening")
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
