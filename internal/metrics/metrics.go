package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/zerovacancy/zerovacancy/internal/asyncdata"
	"github.com/zerovacancy/zerovacancy/internal/core"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Lifecycle metrics
	runsTotal         *prometheus.CounterVec
	runDuration       *prometheus.HistogramVec
	announcements     *prometheus.CounterVec
	marketplaceWrites *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Lifecycle metrics
	r.runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zerovacancy_async_runs_total",
			Help: "Finished fetch and mutation runs by outcome",
		},
		[]string{"name", "outcome"},
	)
	r.runDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zerovacancy_async_run_duration_seconds",
			Help:    "Fetch and mutation run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"name"},
	)
	r.announcements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zerovacancy_announcements_total",
			Help: "User-facing error notifications by error kind",
		},
		[]string{"kind"},
	)
	r.marketplaceWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zerovacancy_marketplace_writes_total",
			Help: "Applications and bookings written, by entity and status",
		},
		[]string{"entity", "status"},
	)

	reg.MustRegister(r.runsTotal)
	reg.MustRegister(r.runDuration)
	reg.MustRegister(r.announcements)
	reg.MustRegister(r.marketplaceWrites)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// Observe records a finished fetch or mutation run.
func (r *Registry) Observe(name string, outcome asyncdata.Outcome, elapsed time.Duration) {
	r.runsTotal.WithLabelValues(name, string(outcome)).Inc()
	if outcome != asyncdata.OutcomeRolledBack {
		r.runDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	}
}

// RecordAnnouncement counts a user-facing notification.
func (r *Registry) RecordAnnouncement(kind core.Kind) {
	r.announcements.WithLabelValues(string(kind)).Inc()
}

// RecordWrite counts an application or booking write. status is "ok" or
// the error kind.
func (r *Registry) RecordWrite(entity, status string) {
	r.marketplaceWrites.WithLabelValues(entity, status).Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
