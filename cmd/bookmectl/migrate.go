package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookmehq/bookme/internal/config"
	"github.com/bookmehq/bookme/internal/store/postgres"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			if err := postgres.Migrate(cfg.Database.DSN()); err != nil {
				return err
			}

			fmt.Println("migrations applied")
			return nil
		},
	}
}
