package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
	"github.com/couchcryptid/forecast-scoring-service/internal/pipeline"
	"github.com/couchcryptid/forecast-scoring-service/internal/query"
)

func newRMSECmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rmse",
		Short: "Show the per-model, per-region RMSE table for a year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			year := a.year(cmd)
			source, _ := cmd.Flags().GetString("source")

			var (
				table query.Table
				err   error
			)
			switch source {
			case pipeline.SourceMetrics:
				table, err = a.facade.RMSETable(cmd.Context(), year)
			case pipeline.SourceRaw:
				table, err = a.facade.RawRMSETable(cmd.Context(), year)
			default:
				return fmt.Errorf("invalid source %q: must be metrics or raw", source)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.output() == "json" {
				return writeJSON(out, table.Rows(year, source))
			}
			if len(table) == 0 {
				fmt.Fprintf(out, "No RMSE scores for %d.\n", year)
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			header := []string{"MODEL"}
			for _, r := range domain.Regions() {
				header = append(header, strings.ToUpper(r.String()))
			}
			fmt.Fprintln(w, strings.Join(header, "\t"))

			for _, model := range table.Models() {
				cells := []string{model}
				for _, r := range domain.Regions() {
					if v, ok := table[model][r]; ok {
						cells = append(cells, fmt.Sprintf("%.3f", v))
					} else {
						cells = append(cells, "-")
					}
				}
				fmt.Fprintln(w, strings.Join(cells, "\t"))
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int("year", 0, "year (default: forecast year)")
	cmd.Flags().String("source", pipeline.SourceMetrics, "score source: metrics or raw")
	return cmd
}
