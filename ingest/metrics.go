package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments refresh runs.
type Metrics struct {
	RunsTotal         *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	DocumentsIngested *prometheus.CounterVec
	ProjectFailures   prometheus.Counter
}

// NewMetrics registers the refresh metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docportal",
			Subsystem: "ingest",
			Name:      "runs_total",
			Help:      "Refresh runs by terminal status.",
		}, []string{"status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docportal",
			Subsystem: "ingest",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of refresh runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		DocumentsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docportal",
			Subsystem: "ingest",
			Name:      "documents_ingested_total",
			Help:      "Documents written to the store, by category.",
		}, []string{"category"}),
		ProjectFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "docportal",
			Subsystem: "ingest",
			Name:      "project_failures_total",
			Help:      "Projects skipped because their metadata could not be read.",
		}),
	}
}
