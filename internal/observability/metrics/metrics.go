// Package metrics exposes Prometheus collectors for the extraction pipeline.
package metrics

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for recognition calls.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// PipelineMetrics holds the collectors recorded by the pipeline service.
type PipelineMetrics struct {
	registry *prometheus.Registry

	recognitionCalls *prometheus.CounterVec
	recheckRuns      *prometheus.CounterVec
	backfillEntries  *prometheus.CounterVec
	entriesProduced  prometheus.Histogram
	duration         *prometheus.HistogramVec
}

// NewPipelineMetrics creates the pipeline collectors on a fresh registry that
// also carries the Go runtime and process collectors.
func NewPipelineMetrics() (*PipelineMetrics, error) {
	registry := prometheus.NewRegistry()

	m := &PipelineMetrics{
		registry: registry,
		recognitionCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vocabscan",
				Name:      "recognition_calls_total",
				Help:      "Recognition adapter calls by mode and outcome",
			},
			[]string{"mode", "outcome"},
		),
		recheckRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vocabscan",
				Name:      "recheck_runs_total",
				Help:      "Confidence recheck passes by status",
			},
			[]string{"status"}, // skipped, applied, failed
		),
		backfillEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vocabscan",
				Name:      "backfill_entries_total",
				Help:      "Meaning backfill results per entry",
			},
			[]string{"status"}, // filled, fallback, not-found, failed
		),
		entriesProduced: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "vocabscan",
				Name:      "analyze_entries",
				Help:      "Entries returned per analyze operation",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vocabscan",
				Name:      "operation_duration_seconds",
				Help:      "Duration of pipeline operations",
				// 100ms to ~100s; vision calls dominate the upper range.
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 11),
			},
			[]string{"operation"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.recognitionCalls,
		m.recheckRuns,
		m.backfillEntries,
		m.entriesProduced,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}
	return m, nil
}

// RecordRecognition counts one recognition call.
func (m *PipelineMetrics) RecordRecognition(mode string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	m.recognitionCalls.WithLabelValues(mode, outcome).Inc()
}

// RecordRecheck counts one recheck pass.
func (m *PipelineMetrics) RecordRecheck(status string) {
	m.recheckRuns.WithLabelValues(status).Inc()
}

// RecordBackfill adds n entries with the given backfill status.
func (m *PipelineMetrics) RecordBackfill(status string, n int) {
	if n <= 0 {
		return
	}
	m.backfillEntries.WithLabelValues(status).Add(float64(n))
}

// RecordEntries observes the size of an analyze result.
func (m *PipelineMetrics) RecordEntries(n int) {
	m.entriesProduced.Observe(float64(n))
}

// ObserveDuration records how long operation took since start.
func (m *PipelineMetrics) ObserveDuration(operation string, start time.Time) {
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Registry returns the underlying registry, mainly for tests.
func (m *PipelineMetrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *PipelineMetrics) Handler(logger *slog.Logger) http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      slog.NewLogLogger(logger.Handler(), slog.LevelError),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}
