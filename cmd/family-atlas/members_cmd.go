package main

import (
	"fmt"
	"strings"

	"family-atlas/internal/logger"
	"family-atlas/internal/model"

	"github.com/spf13/cobra"
)

func parseSexFlag(v string) (model.Sex, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "", "U":
		return model.SexUnknown, nil
	case "M":
		return model.SexMale, nil
	case "F":
		return model.SexFemale, nil
	}
	return "", fmt.Errorf("invalid --sex %q: want M, F or U", v)
}

func parseRelationType(v string) (model.RelationType, error) {
	switch t := model.RelationType(strings.ToLower(strings.TrimSpace(v))); t {
	case model.RelationParent, model.RelationChild, model.RelationSpouse:
		return t, nil
	}
	return "", fmt.Errorf("invalid --type %q: want parent, child or spouse", v)
}

func newMemberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Maintain live family members",
	}
	var (
		ownerID string
		m       model.Member
		sex     string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a member, or update the details of an existing id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := parseSexFlag(sex)
			if err != nil {
				return err
			}
			m.Sex = s
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			repo, closeRepo, err := openRepository(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeRepo()
			if err := repo.AddMember(cmd.Context(), ownerID, m); err != nil {
				return err
			}
			logger.L().Info("member_added", "owner", ownerID, "id", m.ID)
			return writeJSON(cmd.OutOrStdout(), commandOutput{Command: "member add", Result: m})
		},
	}
	add.Flags().StringVar(&ownerID, "owner", "", "Owner id (required)")
	add.Flags().StringVar(&m.ID, "id", "", "Member id (required)")
	add.Flags().StringVar(&m.Name, "name", "", "Display name")
	add.Flags().StringVar(&sex, "sex", "U", "M, F or U")
	add.Flags().StringVar(&m.BirthDate, "birth", "", "Birth date (free text)")
	add.Flags().StringVar(&m.DeathDate, "death", "", "Death date (free text)")
	_ = add.MarkFlagRequired("owner")
	_ = add.MarkFlagRequired("id")
	cmd.AddCommand(add)
	return cmd
}

func newRelationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relation",
		Short: "Maintain relationships between live members",
	}
	var (
		ownerID string
		r       model.Relationship
		typ     string
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Declare a relationship edge; parent means --from is the parent of --to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseRelationType(typ)
			if err != nil {
				return err
			}
			r.Type = t
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			repo, closeRepo, err := openRepository(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeRepo()
			if err := repo.AddRelationship(cmd.Context(), ownerID, r); err != nil {
				return err
			}
			logger.L().Info("relation_added", "owner", ownerID, "from", r.FromID, "to", r.ToID, "type", r.Type)
			return writeJSON(cmd.OutOrStdout(), commandOutput{Command: "relation add", Result: r})
		},
	}
	add.Flags().StringVar(&ownerID, "owner", "", "Owner id (required)")
	add.Flags().StringVar(&r.FromID, "from", "", "From member id (required)")
	add.Flags().StringVar(&r.ToID, "to", "", "To member id (required)")
	add.Flags().StringVar(&typ, "type", "", "parent, child or spouse (required)")
	for _, f := range []string{"owner", "from", "to", "type"} {
		_ = add.MarkFlagRequired(f)
	}
	cmd.AddCommand(add)
	return cmd
}
