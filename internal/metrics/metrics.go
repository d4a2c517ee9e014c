// Package metrics counts API calls and session transitions on a private
// Prometheus registry and summarizes them for the stats command.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry *prometheus.Registry

	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	SessionTransitions *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		APIRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "useradmin_api_requests_total",
			Help: "Total number of backend API requests.",
		}, []string{"operation", "status_code"}),

		APIRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "useradmin_api_request_duration_seconds",
			Help:    "Backend API request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),

		SessionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "useradmin_session_transitions_total",
			Help: "Session state transitions by target state and reason.",
		}, []string{"state", "reason"}),
	}

	reg.MustRegister(m.APIRequestsTotal, m.APIRequestDuration, m.SessionTransitions)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one finished API call. status 0 means no response
// was received.
func (m *Metrics) ObserveRequest(operation string, status int, seconds float64) {
	m.APIRequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.APIRequestDuration.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) IncSessionTransition(state, reason string) {
	m.SessionTransitions.WithLabelValues(state, reason).Inc()
}
