package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/udisondev/skillsys/internal/config"
	"github.com/udisondev/skillsys/internal/db"
	"github.com/udisondev/skillsys/internal/ecs"
	"github.com/udisondev/skillsys/internal/game/skill"
)

func newSnapshotCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "snapshot <entity-id>",
		Short: "Print the skill snapshots persisted for an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := parseEntityID(args[0])
			if err != nil {
				return err
			}

			cfg, err := config.LoadSkillServer(cfgPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if !cfg.Database.Enabled {
				return fmt.Errorf("database is disabled in %s", cfgPath)
			}

			database, err := db.New(cmd.Context(), cfg.Database.DSN())
			if err != nil {
				return err
			}
			defer database.Close()

			states, err := db.NewSkillStateRepository(database.Pool()).LoadByEntity(cmd.Context(), uid)
			if err != nil {
				return err
			}
			return printSnapshots(cmd.OutOrStdout(), states)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "config/skillserver.yaml", "server config with database settings")
	return cmd
}

func parseEntityID(s string) (ecs.EntityID, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid entity id %q", s)
	}
	return ecs.EntityID(v), nil
}

func printSnapshots(out io.Writer, states []skill.SkillState) error {
	if len(states) == 0 {
		_, err := fmt.Fprintln(out, "no skills stored")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLEVEL\tXP\tMENU")
	for _, s := range states {
		fmt.Fprintf(tw, "%s\t%d/%d\t%d/%d\t%t\n",
			s.Name, s.Level, s.MaxLevel, s.Experience, s.MaxExperience, s.DisplayInMenu)
	}
	return tw.Flush()
}
