package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the relay's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RelayRequests *prometheus.CounterVec
	RelayDuration *prometheus.HistogramVec
	RateLimited   prometheus.Counter
}

// NewMetrics creates the collectors together with Go runtime and process
// collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		RelayRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_requests_total",
				Help: "Relay requests by result (ok or error kind)",
			},
			[]string{"result"},
		),
		RelayDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "relay_request_duration_seconds",
				Help:    "Relay request duration in seconds, upstream call included",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30},
			},
			[]string{"result"},
		),
		RateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "relay_rate_limited_total",
				Help: "Relay requests rejected by the rate limiter",
			},
		),
	}

	reg.MustRegister(
		m.RelayRequests,
		m.RelayDuration,
		m.RateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveRelay records one finished relay request.
func (m *Metrics) ObserveRelay(result string, d time.Duration) {
	m.RelayRequests.WithLabelValues(result).Inc()
	m.RelayDuration.WithLabelValues(result).Observe(d.Seconds())
}

// IncRateLimited records one rejected request.
func (m *Metrics) IncRateLimited() {
	m.RateLimited.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
