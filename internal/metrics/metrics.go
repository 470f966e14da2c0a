package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the service
type Metrics struct {
	// Wallet sign-in attempts by scheme and result
	Authentications *prometheus.CounterVec

	// Presented sessions checked by a verifier
	Verifications *prometheus.CounterVec

	// Guard outcomes by kind
	GuardDecisions *prometheus.CounterVec

	// Privileged catalog mutations by resource and action
	CatalogMutations *prometheus.CounterVec

	// HTTP request latency by route
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics registers every collector with registry
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		Authentications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tutorauth_authentications_total",
				Help: "Total number of wallet authentication attempts",
			},
			[]string{"scheme", "result"},
		),
		Verifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tutorauth_session_verifications_total",
				Help: "Total number of session verifications",
			},
			[]string{"scheme", "result"},
		),
		GuardDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tutorauth_guard_decisions_total",
				Help: "Total number of authorization guard decisions",
			},
			[]string{"outcome"},
		),
		CatalogMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tutorauth_catalog_mutations_total",
				Help: "Total number of privileged catalog mutations",
			},
			[]string{"resource", "action", "result"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tutorauth_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// NewRegistry returns a fresh registry with Metrics registered
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	return reg, NewMetrics(reg)
}

// Handler exposes the collectors of reg
func Handler(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// RecordAuthentication counts one sign-in attempt
func (m *Metrics) RecordAuthentication(scheme string, err error) {
	if m == nil {
		return
	}
	m.Authentications.WithLabelValues(scheme, result(err)).Inc()
}

// RecordVerification counts one verifier decision
func (m *Metrics) RecordVerification(scheme string, valid bool) {
	if m == nil {
		return
	}
	outcome := "rejected"
	if valid {
		outcome = "accepted"
	}
	m.Verifications.WithLabelValues(scheme, outcome).Inc()
}

// RecordGuardDecision counts one guard outcome
func (m *Metrics) RecordGuardDecision(outcome string) {
	if m == nil {
		return
	}
	m.GuardDecisions.WithLabelValues(outcome).Inc()
}

// RecordCatalogMutation counts one privileged mutation attempt
func (m *Metrics) RecordCatalogMutation(resource, action string, err error) {
	if m == nil {
		return
	}
	m.CatalogMutations.WithLabelValues(resource, action, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObserveRequest records the latency of one HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
