package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bookmehq/bookme/internal/config"
	"github.com/bookmehq/bookme/internal/store/postgres"
	redisstore "github.com/bookmehq/bookme/internal/store/redis"
	"github.com/bookmehq/bookme/internal/tenancy"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	rootCmd := &cobra.Command{
		Use:   "bookmectl",
		Short: "Bookme platform administration",
		Long:  "Operator tooling for the Bookme tenant directory and access control core. Configuration is read from BOOKME_* environment variables, the same as the server.",
	}

	rootCmd.AddCommand(
		migrateCmd(),
		staffCmd(),
		rolesCmd(),
		domainsCmd(),
		tenantsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore loads config and connects to PostgreSQL.
func openStore(ctx context.Context) (*config.Config, *postgres.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // validated by config.Load
	if err != nil {
		return nil, nil, err
	}

	return cfg, store, nil
}

// openDirectory connects to both stores and builds a tenant directory.
// The returned closer shuts down both connections.
func openDirectory(ctx context.Context) (*tenancy.Directory, *postgres.Store, func(), error) {
	cfg, store, err := openStore(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	hostCache, err := redisstore.NewHostCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}

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

	closer := func() {
		_ = hostCache.Close()
		store.Close()
	}

	return directory, store, closer, nil
}
