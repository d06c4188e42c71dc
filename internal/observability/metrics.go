package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce     sync.Once
	requestsTotal    *prometheus.CounterVec
	latencySeconds   *prometheus.HistogramVec
	errorsTotal      *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	archivalsTotal   *prometheus.CounterVec
	emailsSentTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evap_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "evap_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evap_errors_total",
			Help: "Total number of error responses returned.",
		}, []string{"method", "route", "status"})

		transitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evap_course_transitions_total",
			Help: "Total number of successful course lifecycle transitions.",
		}, []string{"transition"})

		archivalsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evap_archivals_total",
			Help: "Total number of successful archival operations.",
		}, []string{"scope"})

		emailsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "evap_emails_sent_total",
			Help: "Total number of notification mails handed to delivery.",
		}, []string{"template"})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal, transitionsTotal, archivalsTotal, emailsSentTotal)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// TransitionsTotal exposes the counter for lifecycle transitions.
func TransitionsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return transitionsTotal
}

// ArchivalsTotal exposes the counter for archival operations.
func ArchivalsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return archivalsTotal
}

// EmailsSentTotal exposes the counter for sent notification mails.
func EmailsSentTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return emailsSentTotal
}

// MetricsHandler exposes the Prometheus scrape endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}
