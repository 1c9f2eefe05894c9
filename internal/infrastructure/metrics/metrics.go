package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/gobooks/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Submission metrics
	DocumentsSubmitted   *prometheus.CounterVec
	SubmissionRejections *prometheus.CounterVec
	PersistenceFailures  *prometheus.CounterVec
	SubmitDuration       *prometheus.HistogramVec

	// Outbox metrics
	OutboxPublished *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates and registers all metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		DocumentsSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobooks_documents_submitted_total",
				Help: "Total number of documents persisted",
			},
			[]string{"type"},
		),
		SubmissionRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobooks_submission_rejections_total",
				Help: "Total blocking reasons returned by the validation gate",
			},
			[]string{"type", "code"},
		),
		PersistenceFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobooks_persistence_failures_total",
				Help: "Total submissions that failed at the storage layer",
			},
			[]string{"type"},
		),
		SubmitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gobooks_submit_duration_seconds",
				Help:    "Duration of successful submissions",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),

		OutboxPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobooks_outbox_published_total",
				Help: "Outbox events handled by the publisher",
			},
			[]string{"status"},
		),

		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gobooks_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "gobooks_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),
	}
}

// DocumentSubmitted implements usecase.Recorder.
func (m *Metrics) DocumentSubmitted(docType string, elapsed time.Duration) {
	m.DocumentsSubmitted.WithLabelValues(docType).Inc()
	m.SubmitDuration.WithLabelValues(docType).Observe(elapsed.Seconds())
}

// SubmissionRejected implements usecase.Recorder.
// Each blocking reason is counted once under its code.
func (m *Metrics) SubmissionRejected(docType string, reasons []domain.Reason) {
	for _, r := range reasons {
		m.SubmissionRejections.WithLabelValues(docType, r.Code).Inc()
	}
}

// PersistenceFailed implements usecase.Recorder.
func (m *Metrics) PersistenceFailed(docType string) {
	m.PersistenceFailures.WithLabelValues(docType).Inc()
}

// EventPublished counts an outbox event by outcome.
func (m *Metrics) EventPublished(ok bool) {
	status := "published"
	if !ok {
		status = "failed"
	}
	m.OutboxPublished.WithLabelValues(status).Inc()
}
