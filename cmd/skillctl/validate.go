package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/udisondev/skillsys/internal/game/skill"
)

func newValidateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <dir>",
		Short: "Parse prototypes and report names the registry would reject",
		Long: `Parse every YAML prototype under <dir> and build the skill registry from it.

Parse errors and duplicate prototype ids always fail. Duplicate skill names
are reported; the first definition wins at runtime. Use --strict to fail on
them as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, templates, err := loadRegistry(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			byID := make(map[string]string, len(templates))
			for _, t := range templates {
				byID[t.ID] = t.Name
			}

			out := cmd.OutOrStdout()
			rejected := reg.Rejected()
			for _, id := range rejected {
				fmt.Fprintf(out, "duplicate: prototype %s reuses skill name %q, skipped\n", id, byID[id])
			}
			fmt.Fprintf(out, "%d prototypes, %d skills, %d public, %d duplicates\n",
				len(templates), reg.Len(), len(reg.PublicSkills()), len(rejected))

			if strict && len(rejected) > 0 {
				return fmt.Errorf("%d prototypes rejected: %w", len(rejected), skill.ErrDuplicateTemplate)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat duplicate skill names as errors")
	return cmd
}
