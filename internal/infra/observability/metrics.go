package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the reconciliation pipeline.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the optional /metrics listener can use it.
	Registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	filesParsed   *prometheus.CounterVec
	linesFailed   prometheus.Counter
	records       *prometheus.CounterVec
	reconOutcomes *prometheus.CounterVec
	identityTiers *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// pipeline metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conciliador_stage_duration_seconds",
				Help:    "Duration of pipeline stages.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		filesParsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conciliador_files_parsed_total",
				Help: "Source files parsed, by winning parser.",
			},
			[]string{"parser"},
		),
		linesFailed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "conciliador_lines_failed_total",
				Help: "Source lines that produced no record.",
			},
		),
		records: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conciliador_records_total",
				Help: "Canonical records produced, by kind.",
			},
			[]string{"kind"},
		),
		reconOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conciliador_reconciliation_outcomes_total",
				Help: "Bank entries classified, by outcome.",
			},
			[]string{"status"},
		),
		identityTiers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conciliador_identity_resolutions_total",
				Help: "Identity resolutions, by confidence tier.",
			},
			[]string{"tier"},
		),
	}
}

// RecordStageDuration records the duration of a pipeline stage.
func (m *Metrics) RecordStageDuration(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// IncrFileParsed counts one parsed file for the winning parser.
func (m *Metrics) IncrFileParsed(parser string) {
	m.filesParsed.WithLabelValues(parser).Inc()
}

// AddLinesFailed counts failed source lines.
func (m *Metrics) AddLinesFailed(n int) {
	m.linesFailed.Add(float64(n))
}

// AddRecords counts canonical records of one kind.
func (m *Metrics) AddRecords(kind string, n int) {
	m.records.WithLabelValues(kind).Add(float64(n))
}

// IncrReconOutcome counts one classified bank entry.
func (m *Metrics) IncrReconOutcome(status string) {
	m.reconOutcomes.WithLabelValues(status).Inc()
}

// IncrIdentityTier counts one identity resolution by tier.
func (m *Metrics) IncrIdentityTier(tier string) {
	m.identityTiers.WithLabelValues(tier).Inc()
}
