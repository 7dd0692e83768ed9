package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/auth"
)

// Collector exposes credential and API outcomes to Prometheus.
type Collector struct {
	credentials *prometheus.CounterVec
	denials     *prometheus.CounterVec
	apiErrors   *prometheus.CounterVec
	signInLimit prometheus.Counter
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		credentials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chamfer_credential_resolutions_total",
			Help: "Request credentials by resolution outcome",
		}, []string{"outcome"}),
		denials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chamfer_permission_denied_total",
			Help: "Operations refused by the authorization gate",
		}, []string{"operation"}),
		apiErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chamfer_graphql_errors_total",
			Help: "GraphQL errors by code",
		}, []string{"code"}),
		signInLimit: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chamfer_sign_in_throttled_total",
			Help: "Sign-in attempts rejected by the rate limiter",
		}),
	}

	reg.MustRegister(c.credentials, c.denials, c.apiErrors, c.signInLimit)
	return c
}

// RecordCredential counts one credential resolution. It fits auth.WithObserver.
func (c *Collector) RecordCredential(outcome auth.Outcome) {
	c.credentials.WithLabelValues(string(outcome)).Inc()
}

// RecordDenied counts one gate refusal.
func (c *Collector) RecordDenied(operation string) {
	c.denials.WithLabelValues(operation).Inc()
}

// RecordError counts one client-facing error code.
func (c *Collector) RecordError(code string) {
	c.apiErrors.WithLabelValues(code).Inc()
}

// RecordThrottled counts one rate-limited sign-in.
func (c *Collector) RecordThrottled() {
	c.signInLimit.Inc()
}

// Handler serves the Prometheus scrape endpoint.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
