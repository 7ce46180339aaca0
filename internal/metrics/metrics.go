// Package metrics exposes import pipeline counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mrima/records-portal/internal/importers"
)

const namespace = "records"

// Outcome labels for the rows counter.
const (
	OutcomeImported  = "imported"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
	OutcomeConflict  = "conflict"
)

type Metrics struct {
	registry *prometheus.Registry
	rows     *prometheus.CounterVec
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New registers the import collectors on a fresh registry that also
// carries the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Rows processed by CSV imports, by outcome.",
		}, []string{"domain", "outcome"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "runs_total",
			Help:      "Finished import runs, by status.",
		}, []string{"domain", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "duration_seconds",
			Help:      "Wall time of import runs.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"domain"}),
	}
	m.registry.MustRegister(
		m.rows,
		m.runs,
		m.duration,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveImport records one finished run. result may be nil when the run
// failed before producing one.
func (m *Metrics) ObserveImport(domain string, result *importers.Result, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(domain).Observe(elapsed.Seconds())
	m.runs.WithLabelValues(domain, RunStatus(result, err)).Inc()

	if result == nil {
		return
	}
	m.rows.WithLabelValues(domain, OutcomeImported).Add(float64(result.SuccessfulRecords))
	m.rows.WithLabelValues(domain, OutcomeDuplicate).Add(float64(result.DuplicateRecords))
	m.rows.WithLabelValues(domain, OutcomeFailed).Add(float64(result.FailedRecords))
	m.rows.WithLabelValues(domain, OutcomeSkipped).Add(float64(result.SkippedRecords - result.ConflictRecords))
	m.rows.WithLabelValues(domain, OutcomeConflict).Add(float64(result.ConflictRecords))
}

// RunStatus classifies a run as rejected, cancelled, failed or succeeded.
func RunStatus(result *importers.Result, err error) string {
	switch {
	case err != nil && importers.IsPrecondition(err):
		return "rejected"
	case result != nil && result.Cancelled:
		return "cancelled"
	case err != nil, result == nil, !result.Success:
		return "failed"
	default:
		return "succeeded"
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
