package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/daylane/booking-api/internal/config"
	"github.com/daylane/booking-api/internal/db"
	"github.com/daylane/booking-api/internal/usage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Env == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Info().Str("env", cfg.Env).Dur("interval", cfg.WorkerInterval).Msg("usage-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	collector := usage.NewCollector(pgPool)

	// Run once at startup, then on the interval.
	runOnce(rootCtx, collector)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutdown signal received, stopping usage worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, collector)
		}
	}
}

func runOnce(ctx context.Context, collector *usage.Collector) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	n, err := collector.SnapshotAll(runCtx)
	if err != nil {
		log.Error().Err(err).Msg("snapshot run error")
		return
	}
	log.Info().Int("tenants", n).Dur("took", time.Since(start)).Msg("snapshot run complete")
}
