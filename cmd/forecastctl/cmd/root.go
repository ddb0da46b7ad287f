package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/couchcryptid/forecast-scoring-service/internal/catalog"
	"github.com/couchcryptid/forecast-scoring-service/internal/observability"
	"github.com/couchcryptid/forecast-scoring-service/internal/query"
	"github.com/couchcryptid/forecast-scoring-service/internal/scoring"
	"github.com/couchcryptid/forecast-scoring-service/internal/series"
)

// app carries the settings and services shared by every subcommand.
type app struct {
	v       *viper.Viper
	logger  *slog.Logger
	metrics *observability.Metrics
	loader  *series.Loader
	scores  *scoring.MetricsReader
	facade  *query.Facade
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd builds the forecastctl command tree. Every persistent flag can
// also be set through a FORECAST_* environment variable or a config file.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "forecastctl",
		Short:         "Forecast data CLI",
		Long:          `Query hourly temperature forecasts and RMSE scores from a forecast data directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (yaml, json, or toml)")
	pf.String("data-dir", "csvs_extracted/data", "forecast CSV directory")
	pf.Int("forecast-year", 2024, "year with observed values")
	pf.Int("unseen-year", 2025, "prediction-only year")
	pf.Int("concurrency", 4, "parallel model loads for comparisons")
	pf.StringP("output", "o", "text", "output format: text or json")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")

	a.v.SetEnvPrefix("FORECAST")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindPFlags(pf)

	root.AddCommand(
		newModelsCmd(a),
		newDaysCmd(a),
		newForecastCmd(a),
		newCompareCmd(a),
		newRMSECmd(a),
		newValidateCmd(a),
		newPublishCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	_ = a.v.BindPFlags(cmd.Flags())
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	switch a.output() {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output %q: must be text or json", a.output())
	}
	concurrency := a.v.GetInt("concurrency")
	if concurrency < 1 || concurrency > 64 {
		return fmt.Errorf("invalid concurrency %d: must be in [1, 64]", concurrency)
	}

	dir := a.dataDir()
	a.logger = observability.NewTextLogger(cmd.ErrOrStderr(), a.v.GetString("log-level"))
	a.metrics = observability.NewUnregisteredMetrics()
	a.loader = series.NewLoader(dir, a.logger, a.metrics)
	a.scores = scoring.NewMetricsReader(dir, a.logger, a.metrics)
	a.facade = query.New(catalog.NewScanner(dir), a.loader, a.scores, a.logger, a.metrics, concurrency)
	return nil
}

func (a *app) dataDir() string   { return a.v.GetString("data-dir") }
func (a *app) output() string    { return strings.ToLower(a.v.GetString("output")) }
func (a *app) forecastYear() int { return a.v.GetInt("forecast-year") }
func (a *app) unseenYear() int   { return a.v.GetInt("unseen-year") }

// year returns the --year flag, defaulting to the forecast year.
func (a *app) year(cmd *cobra.Command) int {
	if y, _ := cmd.Flags().GetInt("year"); y != 0 {
		return y
	}
	return a.forecastYear()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
