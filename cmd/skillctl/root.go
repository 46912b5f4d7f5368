package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/udisondev/skillsys/internal/data"
	"github.com/udisondev/skillsys/internal/game/skill"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "skillctl",
		Short:         "Inspect skill prototypes and stored snapshots",
		Version:       version,
		SilenceUsage:  true,
	}

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every registered prototype")
	root.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelInfo
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
	}

	root.AddCommand(newValidateCmd(), newListCmd(), newSnapshotCmd())
	return root
}

// loadRegistry parses dir and builds a registry the same way the server does.
// Registry logs go to the default logger configured by the root command.
func loadRegistry(ctx context.Context, dir string) (*skill.Registry, []*data.SkillTemplate, error) {
	templates, err := data.LoadSkillPrototypes(ctx, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", dir, err)
	}

	protos := data.NewPrototypeManager(dir)
	protos.SetTemplates(templates)

	reg := skill.NewRegistry(protos)
	reg.Load()
	return reg, templates, nil
}
