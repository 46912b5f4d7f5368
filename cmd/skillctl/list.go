package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list <dir>",
		Short: "Print the skills a new entity would receive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, err := loadRegistry(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			names := reg.PublicSkills()
			if all {
				names = reg.Names()
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLEVEL\tXP\tPUBLIC")
			for _, name := range names {
				t, ok := reg.Lookup(name)
				if !ok {
					continue
				}
				fmt.Fprintf(tw, "%s\t%d/%d\t%d/%d\t%t\n",
					t.Name, t.DefaultLevel, t.MaxLevel, t.DefaultXP, t.MaxExperience, t.DisplayInSkills)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include skills hidden from the skills menu")
	return cmd
}
