package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCompareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare every model's forecast for one region and day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := a.dayQuery(cmd)
			if err != nil {
				return err
			}
			results, err := a.facade.ComparisonForDay(cmd.Context(), q.Region, q.Year, q.Month, q.Day)
			if err != nil {
				return describe(err)
			}

			out := cmd.OutOrStdout()
			if a.output() == "json" {
				return writeJSON(out, results)
			}
			if len(results) == 0 {
				fmt.Fprintln(out, "No model has data for this day.")
				return nil
			}

			fmt.Fprintf(out, "%s on %s %d, %d\n\n", q.Region.Title(), q.Month.Name(), q.Day, q.Year)
			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "MODEL\tHOURS\tRMSE")
			predictionOnly := true
			for _, c := range results {
				if c.RMSE.Valid {
					predictionOnly = false
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", c.Model, c.Slice.Len(), formatScore(c.RMSE))
			}
			w.Flush()
			if predictionOnly {
				fmt.Fprintln(out, "\nPredictions only: no observed values for this day.")
			}
			return nil
		},
	}
	dayFlags(cmd, false, true)
	return cmd
}
