// Package metrics exposes gradebook activity as Prometheus metrics.
//
// Recorder implements core.Observer, so the service reports imports,
// statistics runs and exports without knowing about Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/gradebook/internal/core"
)

const namespace = "gradebook"

// Recorder collects gradebook metrics in its own registry.
type Recorder struct {
	registry *prometheus.Registry

	imports        *prometheus.CounterVec
	rowIssues      *prometheus.CounterVec
	aggregations   prometheus.Counter
	aggregationDur prometheus.Histogram
	exports        *prometheus.CounterVec
	tableRows      prometheus.Gauge
}

var _ core.Observer = (*Recorder)(nil)

// New creates a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Table imports by result.",
		}, []string{"result"}),
		rowIssues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "row_issues_total",
			Help:      "Problems found in imported rows by reason.",
		}, []string{"reason"}),
		aggregations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregations_total",
			Help:      "Statistics computations.",
		}),
		aggregationDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Time spent computing both statistics views.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Downloads by format.",
		}, []string{"kind"}),
		tableRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_rows",
			Help:      "Data rows in the current table.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.imports,
		r.rowIssues,
		r.aggregations,
		r.aggregationDur,
		r.exports,
		r.tableRows,
	)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) ImportCompleted(_ int, issues []core.RowIssue) {
	r.imports.WithLabelValues("ok").Inc()
	for _, issue := range issues {
		r.rowIssues.WithLabelValues(issueReason(issue)).Inc()
	}
}

func (r *Recorder) ImportFailed(err error) {
	r.imports.WithLabelValues(failureReason(err)).Inc()
}

func (r *Recorder) StatisticsComputed(_ int, elapsed time.Duration) {
	r.aggregations.Inc()
	r.aggregationDur.Observe(elapsed.Seconds())
}

func (r *Recorder) Exported(kind core.ExportKind) {
	r.exports.WithLabelValues(string(kind)).Inc()
}

func (r *Recorder) TableChanged(rows int) {
	r.tableRows.Set(float64(rows))
}

func issueReason(issue core.RowIssue) string {
	switch {
	case errors.Is(issue, core.ErrMalformedRow):
		return "malformed_row"
	case errors.Is(issue, core.ErrInvalidGrade):
		return "invalid_grade"
	default:
		return "other"
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, core.ErrFileTooLarge):
		return "too_large"
	case errors.Is(err, core.ErrEmptyFile):
		return "empty"
	case errors.Is(err, core.ErrTooManyImports):
		return "busy"
	default:
		return "invalid"
	}
}
