package main

import (
	"time"

	"github.com/spf13/cobra"
)

func newGeocodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "geocode <place>...",
		Short: "Resolve place names to coordinates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, rc := newGeocoder(ctx, cfg)
			if rc != nil {
				defer rc.Close()
			}
			start := time.Now()
			res := svc.ResolveAll(ctx, args, nil)
			return writeJSON(cmd.OutOrStdout(), commandOutput{
				Command:    "geocode",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     res,
			})
		},
	}
}
