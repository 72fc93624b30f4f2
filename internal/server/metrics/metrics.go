// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth event outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Auth event operations.
const (
	OperationRegister       = "register"
	OperationLogin          = "login"
	OperationProfile        = "profile"
	OperationChangePassword = "change_password"
	OperationSessions       = "sessions"
)

// Metrics contains the application counters. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry           *prometheus.Registry
	HTTPRequestsTotal  *prometheus.CounterVec
	AuthEventsTotal    *prometheus.CounterVec
	TokenAuditFailures prometheus.Counter
}

// NewMetrics creates the collectors and registers them, together with the
// standard Go and process collectors, on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mybank_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		AuthEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mybank_auth_events_total",
				Help: "Total number of account operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		TokenAuditFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "mybank_token_audit_failures_total",
				Help: "Total number of session token audit writes that failed",
			},
		),
	}

	registry.MustRegister(m.HTTPRequestsTotal)
	registry.MustRegister(m.AuthEventsTotal)
	registry.MustRegister(m.TokenAuditFailures)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (m *Metrics) ObserveRequest(method, route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (m *Metrics) AuthEvent(operation, outcome string) {
	if m == nil {
		return
	}
	m.AuthEventsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) TokenAuditFailure() {
	if m == nil {
		return
	}
	m.TokenAuditFailures.Inc()
}
