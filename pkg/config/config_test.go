package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/juriscope/pkg/aggregate"
	"github.com/coolbeans/juriscope/pkg/export"
	"github.com/coolbeans/juriscope/pkg/readability"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "juriscope.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, aggregate.DefaultPrecision, cfg.Precision)
	assert.Equal(t, aggregate.DefaultUndefinedMarker, cfg.UndefinedMarker)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.Readability.Metrics)
	assert.Equal(t, export.FormatCSV, cfg.OutputFormat())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `workers: 4
precision: 3
undefined_marker: "-"
readability:
  metrics: [smog, fk_grade]
log:
  level: debug
  format: json
output:
  file: out/metrics.json
`)

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 3, cfg.Precision)
	assert.Equal(t, "-", cfg.UndefinedMarker)
	assert.Equal(t, []string{"smog", "fk_grade"}, cfg.Readability.Metrics)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, export.FormatJSON, cfg.OutputFormat())

	pipelineConfig, err := cfg.PipelineConfig()
	require.NoError(t, err)
	assert.Equal(t, 4, pipelineConfig.Workers())
	aggregator := pipelineConfig.Aggregator()
	assert.Equal(t, 3, aggregator.Precision())
	assert.Contains(t, aggregator.Columns(), string(readability.SMOG))
	assert.NotContains(t, aggregator.Columns(), string(readability.GunningFog))
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("JURISCOPE_WORKERS", "6")
	t.Setenv("JURISCOPE_LOG_LEVEL", "warn")
	t.Setenv("JURISCOPE_OUTPUT_FORMAT", "sqlite")
	path := writeConfig(t, "workers: 2\n")

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Workers)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, export.FormatSQLite, cfg.OutputFormat())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	tests := map[string]string{
		"negative workers": "workers: -1\n",
		"precision":        "precision: 11\n",
		"log format":       "log:\n  format: xml\n",
		"output format":    "output:\n  format: parquet\n",
		"unknown metric":   "readability:\n  metrics: [lix]\n",
		"empty marker":     "undefined_marker: \"\"\n",
		"malformed":        "workers: [",
		"negative repeats": "normalize:\n  min_header_repeats: -2\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(NewViper(), writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestExternalFiles(t *testing.T) {
	dir := t.TempDir()
	courts := filepath.Join(dir, "courts.yaml")
	require.NoError(t, os.WriteFile(courts, []byte("courts:\n  - code: FCA\n    name: Federal Court of Australia\n    jurisdiction: AU\n"), 0o644))
	grammars := filepath.Join(dir, "grammars.yaml")
	require.NoError(t, os.WriteFile(grammars, []byte("neutral_courts:\n  UK: [EWCOP]\n"), 0o644))

	cfg := &Config{Courts: FileConfig{File: courts}, Grammars: FileConfig{File: grammars}}

	registry, err := cfg.CourtRegistry()
	require.NoError(t, err)
	_, ok := registry.Lookup("FCA")
	assert.True(t, ok)

	set, err := cfg.GrammarSet()
	require.NoError(t, err)
	reporter, ok := set.Reporters().Lookup("EWCOP")
	require.True(t, ok)
	assert.Equal(t, "EWCOP", reporter.Code)

	cfg.Grammars.File = filepath.Join(dir, "absent.yaml")
	_, err = cfg.GrammarSet()
	assert.Error(t, err)
}
