package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// QueryMetrics instruments the HTTP surface and the answer pipeline. Each
// binary carries its own registry so test instances never collide.
type QueryMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	pipelineTotal      *prometheus.CounterVec
	pipelineDuration   *prometheus.HistogramVec
	retrievalHitTotal  *prometheus.CounterVec
	noContextTotal     *prometheus.CounterVec
	retrievedDocuments *prometheus.HistogramVec
	fallbackTotal      *prometheus.CounterVec
}

func NewQueryMetrics(service string) *QueryMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rsa",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rsa",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rsa",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	pipelineTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rsa",
			Subsystem: "pipeline",
			Name:      "queries_total",
			Help:      "Total answered queries by classified intent.",
		},
		[]string{"service", "intent"},
	)
	pipelineDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rsa",
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Answer pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	retrievalHitTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rsa",
			Subsystem: "pipeline",
			Name:      "retrieval_hit_total",
			Help:      "Total queries with at least one retrieved regulation.",
		},
		[]string{"service"},
	)
	noContextTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rsa",
			Subsystem: "pipeline",
			Name:      "no_context_total",
			Help:      "Total queries where no regulation met the score cutoff.",
		},
		[]string{"service"},
	)
	retrievedDocuments := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rsa",
			Subsystem: "pipeline",
			Name:      "retrieved_documents",
			Help:      "Distribution of retrieved documents per query.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
		[]string{"service"},
	)
	fallbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rsa",
			Subsystem: "pipeline",
			Name:      "generation_fallback_total",
			Help:      "Total queries answered with the deterministic fallback text.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		pipelineTotal,
		pipelineDuration,
		retrievalHitTotal,
		noContextTotal,
		retrievedDocuments,
		fallbackTotal,
	)

	return &QueryMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		pipelineTotal:      pipelineTotal,
		pipelineDuration:   pipelineDuration,
		retrievalHitTotal:  retrievalHitTotal,
		noContextTotal:     noContextTotal,
		retrievedDocuments: retrievedDocuments,
		fallbackTotal:      fallbackTotal,
	}
}

func (m *QueryMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *QueryMetrics) StartRequest() {
	m.requestInFlight.Inc()
}

func (m *QueryMetrics) FinishRequest(service, method, path string, status int, duration time.Duration) {
	m.requestInFlight.Dec()
	m.requestTotal.WithLabelValues(service, method, path, httpStatusLabel(status)).Inc()
	m.requestDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

// ObserveQuery records one completed pipeline run. noContext comes from the
// composer rather than the document count: a query can surface documents yet
// still have produced a prompt with no evidence in it.
func (m *QueryMetrics) ObserveQuery(service, intent string, documents int, noContext, fallback bool, duration time.Duration) {
	m.pipelineTotal.WithLabelValues(service, intent).Inc()
	m.pipelineDuration.WithLabelValues(service).Observe(duration.Seconds())
	m.retrievedDocuments.WithLabelValues(service).Observe(float64(documents))
	if documents > 0 {
		m.retrievalHitTotal.WithLabelValues(service).Inc()
	}
	if noContext {
		m.noContextTotal.WithLabelValues(service).Inc()
	}
	if fallback {
		m.fallbackTotal.WithLabelValues(service).Inc()
	}
}

func httpStatusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
