package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coolbeans/juriscope/pkg/pipeline"
	"github.com/coolbeans/juriscope/pkg/types"
)

// metricValue returns the value of the first sample of a counter or gauge
// family whose labels include want.
func metricValue(t *testing.T, c *Collector, name string, want map[string]string) float64 {
	t.Helper()
	families, err := c.Registry().Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := make(map[string]string)
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			matched := true
			for key, value := range want {
				if labels[key] != value {
					matched = false
				}
			}
			if !matched {
				continue
			}
			if counter := metric.GetCounter(); counter != nil {
				return counter.GetValue()
			}
			if histogram := metric.GetHistogram(); histogram != nil {
				return float64(histogram.GetSampleCount())
			}
			return metric.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s %v not found", name, want)
	return 0
}

func runWithCollector(t *testing.T) (*Collector, *pipeline.Report) {
	t.Helper()
	collector := NewCollector()
	runner := pipeline.NewRunner(pipeline.NewConfig(pipeline.WithWorkers(2)), pipeline.WithObserver(collector))
	report, err := runner.Run(context.Background(), []types.Document{
		{ID: "smith", Jurisdiction: types.JurisdictionUK, Court: "UKSC", RawText: "Smith v Jones [2020] UKSC 12. See [2019] UKSC 3."},
		{ID: "tan", Jurisdiction: types.JurisdictionSG, Court: "SGCA", RawText: ""},
		{ID: "orphan", Jurisdiction: types.JurisdictionAU, RawText: "No court."},
	})
	require.NoError(t, err)
	return collector, report
}

func TestCollectorObservesRun(t *testing.T) {
	collector, report := runWithCollector(t)
	require.Equal(t, 2, report.Succeeded())

	assert.Equal(t, 1.0, metricValue(t, collector, "juriscope_documents_total", map[string]string{"jurisdiction": "UK", "court": "UKSC"}))
	assert.Equal(t, 1.0, metricValue(t, collector, "juriscope_documents_total", map[string]string{"jurisdiction": "SG"}))
	assert.Equal(t, 2.0, metricValue(t, collector, "juriscope_citations_total", map[string]string{"type": "uk_neutral"}))
	assert.Equal(t, 1.0, metricValue(t, collector, "juriscope_row_flags_total", map[string]string{"flag": "empty_text"}))
	assert.Equal(t, 1.0, metricValue(t, collector, "juriscope_document_failures_total", map[string]string{"kind": "metadata", "stage": "metadata"}))
	assert.Equal(t, 1.0, metricValue(t, collector, "juriscope_document_duration_seconds", map[string]string{"jurisdiction": "UK"}))
	assert.Equal(t, 1.0, metricValue(t, collector, "juriscope_runs_total", nil))
	assert.Equal(t, 2.0, metricValue(t, collector, "juriscope_last_run_rows", nil))
	assert.Equal(t, 1.0, metricValue(t, collector, "juriscope_last_run_failures", nil))
}

func TestCollectorsAreIndependent(t *testing.T) {
	first, _ := runWithCollector(t)
	second := NewCollector()

	assert.Equal(t, 1.0, metricValue(t, first, "juriscope_runs_total", nil))
	assert.Equal(t, 0.0, metricValue(t, second, "juriscope_runs_total", nil))
}

func TestWriteToTextfile(t *testing.T) {
	collector, _ := runWithCollector(t)
	path := filepath.Join(t.TempDir(), "juriscope.prom")

	require.NoError(t, collector.WriteToTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# TYPE juriscope_documents_total counter")
	assert.Contains(t, string(data), `juriscope_document_failures_total{kind="metadata",stage="metadata"} 1`)

	assert.Error(t, collector.WriteToTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}
