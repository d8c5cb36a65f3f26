package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/bizdesk/internal/domain"
)

const namespace = "bizdesk"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Record metrics
	Mutations      *prometheus.CounterVec
	CollectionSize *prometheus.GaugeVec

	// Session metrics
	OpenSessions prometheus.Gauge

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits prometheus.Counter

	// Idempotency metrics
	IdempotentReplays prometheus.Counter
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "record_mutations_total",
				Help:      "Record creates, updates and deletes by outcome",
			},
			[]string{"kind", "operation", "outcome"},
		),
		CollectionSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "collection_records",
				Help:      "Number of records in a collection as last seen by a session",
			},
			[]string{"kind"},
		),

		OpenSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_sessions",
			Help:      "Current number of open table sessions",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}),

		IdempotentReplays: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "idempotent_replays_total",
			Help:      "Responses served from the idempotency cache",
		}),
	}
}

// ObserveMutation implements usecase.Recorder.
func (m *Metrics) ObserveMutation(kind domain.Kind, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = domain.ErrorCode(err)
	}
	m.Mutations.WithLabelValues(string(kind), operation, outcome).Inc()
}

// SetOpenSessions implements usecase.Recorder.
func (m *Metrics) SetOpenSessions(n int) {
	m.OpenSessions.Set(float64(n))
}

// SetCollectionSize implements usecase.Recorder.
func (m *Metrics) SetCollectionSize(kind domain.Kind, n int) {
	m.CollectionSize.WithLabelValues(string(kind)).Set(float64(n))
}
