// Command genmock writes a deterministic forecast data directory for demos
// and tests: hourly series for every model, region, and year plus a metrics
// file per model scored from the generated series.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out csvs_extracted/data \
//	  -models holtwinters,lstm,prophet \
//	  -forecast-year 2024 -unseen-year 2025
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/couchcryptid/forecast-scoring-service/internal/mockdata"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output data directory")
	models := flag.String("models", strings.Join(mockdata.DefaultModels, ","), "comma-separated model ids")
	forecastYear := flag.Int("forecast-year", 2024, "year with observed values")
	unseenYear := flag.Int("unseen-year", 2025, "prediction-only year (0 to skip)")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	var ids []string
	for _, m := range strings.Split(*models, ",") {
		if m = strings.TrimSpace(m); m != "" {
			ids = append(ids, m)
		}
	}

	sum, err := mockdata.Generate(*out, mockdata.Options{
		Models:       ids,
		ForecastYear: *forecastYear,
		UnseenYear:   *unseenYear,
		Seed:         *seed,
	})
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	log.Printf("wrote %d series files (%d rows) and %d metrics files to %s",
		sum.SeriesFiles, sum.Rows, sum.MetricsFiles, *out)
	return nil
}
