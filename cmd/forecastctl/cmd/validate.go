package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/forecast-scoring-service/internal/validate"
)

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check every series and metrics file in the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tolerance, _ := cmd.Flags().GetFloat64("tolerance")
			v := validate.New(a.facade.Models(), a.loader, a.scores)
			rep := v.Run(cmd.Context(), validate.Options{
				ForecastYear: a.forecastYear(),
				UnseenYear:   a.unseenYear(),
				Tolerance:    tolerance,
			})

			if a.output() == "json" {
				if err := writeJSON(cmd.OutOrStdout(), rep); err != nil {
					return err
				}
			} else {
				rep.Write(cmd.OutOrStdout())
			}
			if !rep.Passed() {
				return errors.New("validation failed")
			}
			return nil
		},
	}
	cmd.Flags().Float64("tolerance", 0.01, "allowed difference between metrics-file and raw RMSE")
	return cmd
}
