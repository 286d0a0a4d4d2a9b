package main

import (
	"time"

	"family-atlas/internal/model"
	"family-atlas/internal/tree"

	"github.com/spf13/cobra"
)

func newTreeCmd() *cobra.Command {
	var (
		ownerID string
		live    bool
	)
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the family tree of an owner as JSON (null when there are no people)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			repo, closeRepo, err := openRepository(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			start := time.Now()
			var root *model.TreeNode
			if live {
				members, err := repo.LoadMembers(ctx, ownerID)
				if err != nil {
					return err
				}
				edges, err := repo.LoadRelationships(ctx, ownerID)
				if err != nil {
					return err
				}
				root = tree.FromRelationships(members, edges)
			} else {
				persons, links, err := repo.LoadGenealogy(ctx, ownerID)
				if err != nil {
					return err
				}
				root = tree.FromGenealogy(persons, links)
			}
			return writeJSON(cmd.OutOrStdout(), commandOutput{
				Command:    "tree",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     root,
			})
		},
	}
	cmd.Flags().StringVar(&ownerID, "owner", "", "Owner id (required)")
	cmd.Flags().BoolVar(&live, "live", false, "Build from live members and relationships instead of imported records")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newEventsCmd() *cobra.Command {
	var ownerID string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the geocoded events of an owner in date order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			repo, closeRepo, err := openRepository(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeRepo()

			start := time.Now()
			evs, err := repo.ListEvents(ctx, ownerID)
			if err != nil {
				return err
			}
			if evs == nil {
				evs = []model.Event{}
			}
			return writeJSON(cmd.OutOrStdout(), commandOutput{
				Command:    "events",
				DurationMS: time.Since(start).Milliseconds(),
				Result:     evs,
			})
		},
	}
	cmd.Flags().StringVar(&ownerID, "owner", "", "Owner id (required)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
