package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List forecast models found in the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			models := a.facade.Models()
			out := cmd.OutOrStdout()
			if a.output() == "json" {
				return writeJSON(out, map[string]any{"models": models})
			}
			if len(models) == 0 {
				fmt.Fprintf(out, "No forecast models found in %s\n", a.dataDir())
				return nil
			}
			for _, m := range models {
				fmt.Fprintln(out, m)
			}
			return nil
		},
	}
}
