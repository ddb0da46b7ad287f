package cmd

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/forecast-scoring-service/internal/domain"
	"github.com/couchcryptid/forecast-scoring-service/internal/query"
	"github.com/couchcryptid/forecast-scoring-service/internal/scoring"
	"github.com/couchcryptid/forecast-scoring-service/internal/series"
)

// dayFlags registers the flags that select one model/region/day.
func dayFlags(cmd *cobra.Command, withModel, withDay bool) {
	if withModel {
		cmd.Flags().StringP("model", "m", "", "model id")
		_ = cmd.MarkFlagRequired("model")
	}
	cmd.Flags().StringP("region", "r", "", "region name")
	cmd.Flags().String("month", "", "month (number or name)")
	cmd.Flags().Int("year", 0, "year (default: forecast year)")
	_ = cmd.MarkFlagRequired("region")
	_ = cmd.MarkFlagRequired("month")
	if withDay {
		cmd.Flags().IntP("day", "d", 0, "day of month")
		_ = cmd.MarkFlagRequired("day")
	}
}

func (a *app) dayQuery(cmd *cobra.Command) (query.DayQuery, error) {
	var q query.DayQuery
	q.Model, _ = cmd.Flags().GetString("model")
	q.Day, _ = cmd.Flags().GetInt("day")
	q.Year = a.year(cmd)

	rs, _ := cmd.Flags().GetString("region")
	region, err := domain.ParseRegion(rs)
	if err != nil {
		return q, err
	}
	q.Region = region

	ms, _ := cmd.Flags().GetString("month")
	month, err := domain.ParseMonth(ms)
	if err != nil {
		return q, err
	}
	q.Month = month
	return q, nil
}

func newDaysCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "days",
		Short: "List the days of a month that have forecast data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := a.dayQuery(cmd)
			if err != nil {
				return err
			}
			days, err := a.facade.AvailableDays(cmd.Context(), q.Model, q.Region, q.Year, q.Month)
			if err != nil {
				return describe(err)
			}
			if a.output() == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"days": days})
			}
			strs := make([]string, len(days))
			for i, d := range days {
				strs[i] = fmt.Sprint(d)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(strs, " "))
			return nil
		},
	}
	dayFlags(cmd, true, false)
	return cmd
}

func newForecastCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Show one model's hourly forecast for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := a.dayQuery(cmd)
			if err != nil {
				return err
			}
			slice, err := a.facade.DailyForecast(cmd.Context(), q)
			if err != nil {
				return describe(err)
			}
			score := scoring.RMSE(slice)
			slice = series.SortByHour(slice)
			if showActual, _ := cmd.Flags().GetBool("actual"); !showActual {
				slice = series.WithoutActuals(slice)
			}

			out := cmd.OutOrStdout()
			if a.output() == "json" {
				return writeJSON(out, map[string]any{"records": slice.Records, "rmse": score})
			}

			fmt.Fprintf(out, "%s - %s on %s %d, %d\n\n", strings.ToUpper(q.Model), q.Region.Title(), q.Month.Name(), q.Day, q.Year)
			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "HOUR\tPREDICTED\tACTUAL")
			for _, r := range slice.Records {
				fmt.Fprintf(w, "%02d:00\t%.2f\t%s\n", r.Hour, r.Predicted, formatOptional(r.Actual))
			}
			w.Flush()
			fmt.Fprintf(out, "\nRMSE: %s\n", formatScore(score))
			return nil
		},
	}
	dayFlags(cmd, true, true)
	cmd.Flags().Bool("actual", false, "include observed temperatures")
	return cmd
}

// describe turns lookup errors into the messages users see.
func describe(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("data not available: %w", err)
	case errors.Is(err, domain.ErrEmptyResult):
		return fmt.Errorf("no data for this period: %w", err)
	}
	return err
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatScore(s scoring.Score) string {
	if !s.Valid {
		return "-"
	}
	return fmt.Sprintf("%.3f", s.Value)
}
