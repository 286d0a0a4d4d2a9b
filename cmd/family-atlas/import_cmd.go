package main

import (
	"fmt"
	"os"
	"time"

	"family-atlas/internal/importer"
	"family-atlas/internal/logger"
	"family-atlas/internal/migrate"
	"family-atlas/internal/store"

	"github.com/spf13/cobra"
)

type commandOutput struct {
	Command    string `json:"command"`
	DurationMS int64  `json:"duration_ms"`
	Result     any    `json:"result"`
}

func newImportCmd() *cobra.Command {
	var (
		ownerID string
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a GEDCOM file for one owner, replacing previously imported data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer f.Close()

			ctx := cmd.Context()
			var repo importer.Repository = store.NewMemory()
			if !dryRun {
				db, err := openDB(ctx, cfg)
				if err != nil {
					return err
				}
				defer db.Close()
				if err := migrate.EnsureSchema(ctx, db); err != nil {
					return err
				}
				repo = store.AttachDB(db)
			}

			stop := startMetricsServer(cfg.MetricsAddr)
			defer stop()
			svc, rc := newGeocoder(ctx, cfg)
			if rc != nil {
				defer rc.Close()
			}

			im := importer.New(repo, svc, importer.Options{
				Progress: func(done, total int) {
					logger.L().Info("geocode_progress", "done", done, "total", total)
				},
			})
			start := time.Now()
			res, err := im.Import(ctx, f, ownerID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), commandOutput{
				Command:    "import",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     res,
			})
		},
	}
	cmd.Flags().StringVar(&ownerID, "owner", "", "Owner id the imported records belong to (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Keep records in memory instead of Postgres")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
