package main

import (
	"family-atlas/internal/logger"
	"family-atlas/internal/migrate"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and indexes if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := migrate.EnsureSchema(cmd.Context(), db); err != nil {
				return err
			}
			logger.L().Info("schema_ok")
			return nil
		},
	}
}
