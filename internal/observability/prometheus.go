// Package observability holds the concrete exporters behind the diag
// interfaces: Prometheus and expvar metrics, and OpenTelemetry and JSON-line
// tracing.
package observability

import (
	"context"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// PrometheusRecorder implements diag.MetricsRecorder on its own registry.
type PrometheusRecorder struct {
	registry    *prometheus.Registry
	operations  *prometheus.CounterVec
	durations   *prometheus.HistogramVec
	diagnostics *prometheus.CounterVec
}

// NewPrometheusRecorder registers the framework metrics under namespace.
func NewPrometheusRecorder(namespace string) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Save and load operations by outcome.",
		}, []string{"operation", "result"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Save and load latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"operation"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ini_diagnostics_total",
			Help:      "Configuration values that failed to parse or load.",
		}, []string{"kind"}),
	}
	for _, c := range []prometheus.Collector{r.operations, r.durations, r.diagnostics} {
		if err := r.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Registry exposes the registry for scraping or inspection.
func (r *PrometheusRecorder) Registry() *prometheus.Registry { return r.registry }

// WriteText writes every gathered metric family in the Prometheus text
// exposition format.
func (r *PrometheusRecorder) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}

// Observe implements diag.MetricsRecorder.
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	r.operations.WithLabelValues(operation, resultLabel(success)).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// ParseFailure implements diag.MetricsRecorder.
func (r *PrometheusRecorder) ParseFailure(kind string) {
	r.diagnostics.WithLabelValues(kind).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
