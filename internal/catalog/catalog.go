// Package catalog discovers which forecasting models have data on disk.
package catalog

import (
	"os"
	"sort"
	"strings"
)

// excluded name fragments mark metric and parameter files, not hourly series.
var excluded = []string{"model_metrics", "param_"}

// ListModels returns the sorted, deduplicated model identifiers found in dir.
// A missing or empty directory yields an empty slice, never an error: callers
// surface "no models available" to the user instead.
func ListModels(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return []string{}
	}

	seen := make(map[string]struct{})
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if model, ok := ModelFromFileName(e.Name()); ok {
			seen[model] = struct{}{}
		}
	}

	models := make([]string, 0, len(seen))
	for m := range seen {
		models = append(models, m)
	}
	sort.Strings(models)
	return models
}

// ModelFromFileName extracts the model identifier from a series file name of
// the form "<model>_<rest>.csv".
func ModelFromFileName(name string) (string, bool) {
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		return "", false
	}
	for _, frag := range excluded {
		if strings.Contains(name, frag) {
			return "", false
		}
	}
	model, _, found := strings.Cut(name, "_")
	if !found || model == "" {
		return "", false
	}
	return model, true
}

// Scanner binds ListModels to a data directory.
type Scanner struct {
	dir string
}

// NewScanner creates a Scanner for dir.
func NewScanner(dir string) *Scanner {
	return &Scanner{dir: dir}
}

// Models lists the models currently present in the data directory.
func (s *Scanner) Models() []string {
	return ListModels(s.dir)
}

// Dir returns the scanned directory.
func (s *Scanner) Dir() string {
	return s.dir
}
