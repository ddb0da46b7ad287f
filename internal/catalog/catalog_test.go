package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("date,hour,predicted_temperature\n"), 0o600))
}

func TestListModels_ExcludesMetricsAndParams(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "holtwinters_bopal_2024.csv")
	touch(t, dir, "holtwinters_vastral_2024.csv")
	touch(t, dir, "holtwinters_model_metrics_2024.csv")
	touch(t, dir, "lstm_bopal_2025.csv")
	touch(t, dir, "param_holtwinters.csv")
	touch(t, dir, "sarima_param_grid.csv")
	touch(t, dir, "notes.txt")

	models := ListModels(dir)

	assert.Equal(t, []string{"holtwinters", "lstm"}, models)
}

func TestListModels_NoDuplicates(t *testing.T) {
	dir := t.TempDir()
	for _, r := range []string{"rakhiyal", "bopal", "ambawadi", "chandkheda", "vastral"} {
		touch(t, dir, "prophet_"+r+"_2024.csv")
	}

	models := ListModels(dir)

	assert.Equal(t, []string{"prophet"}, models)
}

func TestListModels_MissingDirectory(t *testing.T) {
	models := ListModels(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.NotNil(t, models)
	assert.Empty(t, models)
}

func TestListModels_EmptyDirectory(t *testing.T) {
	assert.Empty(t, ListModels(t.TempDir()))
}

func TestListModels_IgnoresSubdirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "arima_old.csv"), 0o755))
	touch(t, dir, "holtwinters_bopal_2024.csv")

	assert.Equal(t, []string{"holtwinters"}, ListModels(dir))
}

func TestModelFromFileName(t *testing.T) {
	tests := []struct {
		name  string
		model string
		ok    bool
	}{
		{"holtwinters_bopal_2024.csv", "holtwinters", true},
		{"LSTM_bopal_2024.CSV", "LSTM", true},
		{"holtwinters_model_metrics_2024.csv", "", false},
		{"param_lstm.csv", "", false},
		{"nounderscore.csv", "", false},
		{"_bopal_2024.csv", "", false},
		{"holtwinters_bopal_2024.json", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			model, ok := ModelFromFileName(tc.name)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.model, model)
		})
	}
}

func TestScanner_Models(t *testing.T) {
	dir := t.TempDir()
	s := NewScanner(dir)
	assert.Empty(t, s.Models())

	touch(t, dir, "arima_bopal_2024.csv")
	assert.Equal(t, []string{"arima"}, s.Models())
	assert.Equal(t, dir, s.Dir())
}
