package main

import (
	"errors"

	"github.com/spf13/cobra"

	"ledgerpass/internal/platform/config"
	"ledgerpass/internal/platform/postgres"
	registrypg "ledgerpass/internal/registry/store/postgres"
)

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply registry schema migrations to Postgres",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := commonRun()
			if cfg.Storage.Driver != config.StoragePostgres {
				return errors.New("migrate requires storage.driver=postgres")
			}
			db, err := postgres.Open(cmd.Context(), cfg.Storage.PostgresDSN)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := registrypg.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			log.Info("migrations applied")
			return nil
		},
	}
}
