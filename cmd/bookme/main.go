package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bookmehq/bookme/internal/auth"
	"github.com/bookmehq/bookme/internal/authz"
	"github.com/bookmehq/bookme/internal/config"
	"github.com/bookmehq/bookme/internal/rolesync"
	"github.com/bookmehq/bookme/internal/server"
	"github.com/bookmehq/bookme/internal/store/postgres"
	redisstore "github.com/bookmehq/bookme/internal/store/redis"
	"github.com/bookmehq/bookme/internal/tenancy"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	logLevel := os.Getenv("BOOKME_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("BOOKME_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	// Connect to Redis for the host resolution cache.
	hostCache, err := redisstore.NewHostCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer hostCache.Close()

	// Create auth service.
	authSvc := auth.NewService(store.Principals(), cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	// Create the tenant directory: host resolution plus provisioning.
	directory := tenancy.NewDirectory(
		store.Tenants(),
		store.RoutingKeys(),
		store,
		store.Audit(),
		hostCache,
		tenancy.Config{
			BaseDomain:    cfg.Tenancy.BaseDomain,
			PlatformHosts: cfg.Tenancy.PlatformHosts,
		},
		log.Logger,
	)

	// Create the permission resolver and the system-role maintainer.
	resolver := authz.NewResolver(store.Memberships(), store.Roles())
	maintainer := rolesync.NewMaintainer(store.Tenants(), store.Roles(), log.Logger)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, store, authSvc, directory, resolver, maintainer)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
