package observability

import (
	"time"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Normalization outcomes used as metric labels.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "parse_failure"
	OutcomeConflict = "conflict"
)

// Metrics holds all Prometheus metrics for the migrator.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	// Registry owns these metrics and backs the /metrics endpoint.
	Registry *prometheus.Registry

	normalizations     *prometheus.CounterVec
	normalizeDuration  prometheus.Histogram
	entities           *prometheus.CounterVec
	entitiesFlagged    prometheus.Counter
	extractionErrors   *prometheus.CounterVec
	httpRequestLatency *prometheus.HistogramVec
}

// NewMetrics creates a private registry and registers all migrator metrics in it.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		normalizations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "migrator_normalizations_total",
				Help: "Export normalization attempts by outcome.",
			},
			[]string{"outcome"},
		),
		normalizeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "migrator_normalization_duration_seconds",
				Help:    "Duration of export normalization including extraction.",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		entities: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "migrator_entities_total",
				Help: "Normalized entities by entity type.",
			},
			[]string{"entity_type"},
		),
		entitiesFlagged: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "migrator_entities_flagged_total",
				Help: "Normalized entities flagged for review.",
			},
		),
		extractionErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "migrator_extraction_errors_total",
				Help: "Extraction collaborator failures.",
			},
			[]string{"extractor"},
		),
		httpRequestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "migrator_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method", "status"},
		),
	}
}

// RecordNormalization records one normalization attempt. Attempts rejected
// before extraction pass a zero duration and are only counted.
func (m *Metrics) RecordNormalization(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.normalizations.WithLabelValues(outcome).Inc()
	if d > 0 {
		m.normalizeDuration.Observe(d.Seconds())
	}
}

// RecordSummary adds a parse summary's counts.
func (m *Metrics) RecordSummary(summary domain.ParseSummary) {
	if m == nil {
		return
	}
	for t, n := range summary.EntityTypes {
		m.entities.WithLabelValues(string(t)).Add(float64(n))
	}
	m.entitiesFlagged.Add(float64(summary.RequiresReview))
}

// IncrExtractionError increments the extraction failure counter.
func (m *Metrics) IncrExtractionError(extractor string) {
	if m == nil {
		return
	}
	m.extractionErrors.WithLabelValues(extractor).Inc()
}

// RecordHTTPRequest observes one served request.
func (m *Metrics) RecordHTTPRequest(route, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestLatency.WithLabelValues(route, method, status).Observe(d.Seconds())
}
