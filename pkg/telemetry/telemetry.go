// Package telemetry records run metrics in a Prometheus registry and dumps
// them in the textfile exposition format.
package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/coolbeans/juriscope/pkg/aggregate"
	"github.com/coolbeans/juriscope/pkg/pipeline"
)

// Namespace prefixes every metric name.
const Namespace = "juriscope"

// Collector implements pipeline.Observer. Every Collector owns its
// registry, so several can coexist in one process.
type Collector struct {
	registry *prometheus.Registry

	documents       *prometheus.CounterVec
	failures        *prometheus.CounterVec
	flags           *prometheus.CounterVec
	citations       *prometheus.CounterVec
	documentSeconds *prometheus.HistogramVec
	runs            prometheus.Counter
	lastRunSeconds  prometheus.Gauge
	lastRunTime     prometheus.Gauge
	lastRunRows     prometheus.Gauge
	lastRunFailures prometheus.Gauge
}

var _ pipeline.Observer = (*Collector)(nil)

// NewCollector creates a collector with all metrics registered.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "documents_total",
			Help:      "Documents that produced a dataset row.",
		}, []string{"jurisdiction", "court"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "document_failures_total",
			Help:      "Documents excluded from the dataset.",
		}, []string{"kind", "stage"}),
		flags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "row_flags_total",
			Help:      "Dataset rows carrying a flag.",
		}, []string{"flag"}),
		citations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "citations_total",
			Help:      "Citations extracted, by citation type.",
		}, []string{"type"}),
		documentSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "document_duration_seconds",
			Help:      "Time spent processing one document.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"jurisdiction"}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Completed or cancelled runs.",
		}),
		lastRunSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Start time of the last run as a Unix timestamp.",
		}),
		lastRunRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_run_rows",
			Help:      "Rows produced by the last run.",
		}),
		lastRunFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_run_failures",
			Help:      "Failures reported by the last run.",
		}),
	}

	c.registry.MustRegister(
		c.documents, c.failures, c.flags, c.citations, c.documentSeconds,
		c.runs, c.lastRunSeconds, c.lastRunTime, c.lastRunRows, c.lastRunFailures,
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveDocument records a produced row.
func (c *Collector) ObserveDocument(row aggregate.MetricRow, elapsed time.Duration) {
	c.documents.WithLabelValues(string(row.Jurisdiction), row.Court).Inc()
	c.documentSeconds.WithLabelValues(string(row.Jurisdiction)).Observe(elapsed.Seconds())
	for citationType, count := range row.CitationCounts {
		if count > 0 {
			c.citations.WithLabelValues(string(citationType)).Add(float64(count))
		}
	}
	for _, flag := range row.Flags {
		c.flags.WithLabelValues(flag).Inc()
	}
}

// ObserveFailure records an excluded document.
func (c *Collector) ObserveFailure(failure pipeline.Failure) {
	c.failures.WithLabelValues(string(failure.Kind), string(failure.Stage)).Inc()
}

// ObserveRun records run totals.
func (c *Collector) ObserveRun(report *pipeline.Report) {
	c.runs.Inc()
	c.lastRunSeconds.Set(report.Duration.Seconds())
	c.lastRunTime.Set(float64(report.Started.Unix()))
	c.lastRunRows.Set(float64(report.Succeeded()))
	c.lastRunFailures.Set(float64(report.Failed()))
}

// WriteToTextfile writes the current metrics to path, atomically, for the
// node exporter textfile collector.
func (c *Collector) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
