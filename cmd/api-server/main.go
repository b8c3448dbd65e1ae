package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/daylane/booking-api/internal/api"
	"github.com/daylane/booking-api/internal/auth"
	"github.com/daylane/booking-api/internal/billing"
	"github.com/daylane/booking-api/internal/catalog"
	"github.com/daylane/booking-api/internal/config"
	"github.com/daylane/booking-api/internal/db"
	"github.com/daylane/booking-api/internal/monitoring"
	redisclient "github.com/daylane/booking-api/internal/redis"
	"github.com/daylane/booking-api/internal/scheduling"
	"github.com/daylane/booking-api/internal/tenant"
	"github.com/daylane/booking-api/internal/usage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	setupLogging(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

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

	if cfg.RunMigrations {
		if err := db.Migrate(rootCtx, pgPool); err != nil {
			log.Fatal().Err(err).Msg("migration error")
		}
		log.Info().Msg("migrations applied")
	}

	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	monitoring.InitMetrics()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	tenants := tenant.NewService(tenant.NewPgRepository(pgPool), tokens)
	cat := catalog.NewManager(catalog.NewPgRepository(pgPool))
	locker := redisclient.NewRedisBookingLocker(rdb, cfg.LockTTL)
	scheduler := scheduling.NewService(scheduling.NewPgRepository(pgPool), locker, cat)
	provider := billing.NewStripeProvider(cfg.StripeAPIKey, cfg.StripeWebhookSecret, cfg.ProviderTimeout)
	bill := billing.NewService(billing.NewPgRepository(pgPool), provider, tenants)
	usageCollector := usage.NewCollector(pgPool)

	server := api.NewServer(tokens, tenants, cat, scheduler, bill, usageCollector, pgPool, rdb, cfg.CORSOrigins)

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("http server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("api-server stopped")
}

func setupLogging(env string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if env == "dev" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
