// Package metrics holds the Prometheus collectors for classification calls
// and the HTTP endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Classification outcomes used as label values.
const (
	OutcomeMatched = "matched"
	OutcomeNoMatch = "no_match"
	OutcomeFailed  = "failed"
)

// Metrics holds all Prometheus collectors for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	classificationsTotal   *prometheus.CounterVec
	classificationDuration *prometheus.HistogramVec
	backendFailuresTotal   *prometheus.CounterVec

	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		classificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "classifications_total",
				Help: "Total number of classify calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		classificationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "classification_duration_seconds",
				Help:    "Duration of classify calls in seconds, including the backend round trip",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),
		backendFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "classification_backend_failures_total",
				Help: "Total number of backend failures by provider and status class",
			},
			[]string{"provider", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 10},
			},
			[]string{"handler", "method", "status"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"handler", "method", "status"},
		),
	}
}

// RecordClassification records one classify call.
func (m *Metrics) RecordClassification(provider, outcome string, duration float64) {
	if m == nil {
		return
	}
	m.classificationsTotal.WithLabelValues(provider, outcome).Inc()
	m.classificationDuration.WithLabelValues(provider).Observe(duration)
}

// RecordBackendFailure records a failure. statusCode is zero when the failure
// carried no HTTP status.
func (m *Metrics) RecordBackendFailure(provider string, statusCode int) {
	if m == nil {
		return
	}
	status := "none"
	if statusCode != 0 {
		status = statusCodeToString(statusCode)
	}
	m.backendFailuresTotal.WithLabelValues(provider, status).Inc()
}

// RecordHTTPRequest records an HTTP request with duration.
func (m *Metrics) RecordHTTPRequest(handler, method string, statusCode int, duration float64) {
	if m == nil {
		return
	}
	status := statusCodeToString(statusCode)
	m.httpRequestDuration.WithLabelValues(handler, method, status).Observe(duration)
	m.httpRequestsTotal.WithLabelValues(handler, method, status).Inc()
}

func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "unknown"
	}
}
