// Package metrics defines the Prometheus collectors exported by the site.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_errors_total",
			Help: "Total number of logged errors by type.",
		},
		[]string{"type"},
	)
	RequestsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "site_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	SubmissionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_submissions_total",
			Help: "Total number of stored form submissions by type.",
		},
		[]string{"type"},
	)
	EmailsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_emails_total",
			Help: "Outbound notification emails by outcome.",
		},
		[]string{"outcome"},
	)
)

// Email outcomes.
const (
	EmailSent          = "sent"
	EmailFailed        = "failed"
	EmailNotConfigured = "not_configured"
)

// Registry holds every site collector. It is separate from the default
// registry so tests can construct servers repeatedly.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		ErrorsCounter,
		RequestsCounter,
		RequestDuration,
		SubmissionsCounter,
		EmailsCounter,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
