// Package metrics holds the Prometheus collectors for screening, retrieval
// and the HTTP API. Collectors live on a private registry so tests and
// multiple servers in one process do not collide.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is a set of registered collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	AssessmentsTotal   *prometheus.CounterVec
	AssessmentDuration *prometheus.HistogramVec
	GeneratorRejected  *prometheus.CounterVec
	QuestionsServed    *prometheus.CounterVec
	RetrievalMatches   prometheus.Histogram
	SessionsActive     prometheus.Gauge
	HTTPRequestsTotal  *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// New creates and registers all collectors, plus the Go and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		AssessmentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mamacheck_assessments_total",
				Help: "Total number of risk assessments by source, tier and language",
			},
			[]string{"source", "tier", "language"},
		),
		AssessmentDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mamacheck_assessment_duration_seconds",
				Help:    "Time taken to produce an assessment, including generator attempts",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10), // 0.5ms to ~2m
			},
			[]string{"source"},
		),
		GeneratorRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mamacheck_generator_rejected_total",
				Help: "Generator results that were discarded, by generator and reason",
			},
			[]string{"generator", "reason"},
		),
		QuestionsServed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mamacheck_questions_served_total",
				Help: "Screening question batches served, by source",
			},
			[]string{"source"},
		),
		RetrievalMatches: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mamacheck_retrieval_matches",
				Help:    "Number of knowledge items above the similarity threshold per query",
				Buckets: prometheus.LinearBuckets(0, 1, 6),
			},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mamacheck_sessions_active",
				Help: "Number of screening sessions held in memory",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mamacheck_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mamacheck_http_request_duration_seconds",
				Help:    "HTTP request latency by route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}

	reg.MustRegister(
		m.AssessmentsTotal,
		m.AssessmentDuration,
		m.GeneratorRejected,
		m.QuestionsServed,
		m.RetrievalMatches,
		m.SessionsActive,
		m.HTTPRequestsTotal,
		m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry for gathering in tests. A nil
// Metrics has no registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAssessment(source, tier, language string, d time.Duration) {
	if m == nil {
		return
	}
	m.AssessmentsTotal.WithLabelValues(source, tier, language).Inc()
	m.AssessmentDuration.WithLabelValues(source).Observe(d.Seconds())
}

func (m *Metrics) GeneratorRejection(generator, reason string) {
	if m == nil {
		return
	}
	m.GeneratorRejected.WithLabelValues(generator, reason).Inc()
}

func (m *Metrics) QuestionBatch(source string) {
	if m == nil {
		return
	}
	m.QuestionsServed.WithLabelValues(source).Inc()
}

func (m *Metrics) RetrievalResult(matches int) {
	if m == nil {
		return
	}
	m.RetrievalMatches.Observe(float64(matches))
}

func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.SessionsActive.Set(float64(n))
}

func (m *Metrics) ObserveHTTP(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, method, http.StatusText(status)).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}
