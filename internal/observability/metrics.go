package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce             sync.Once
	apiRequestsTotal         *prometheus.CounterVec
	apiLatencySeconds        *prometheus.HistogramVec
	apiErrorsTotal           *prometheus.CounterVec
	statusTransitionsTotal   *prometheus.CounterVec
	auditEntriesWrittenTotal *prometheus.CounterVec
	auditEntriesDropped      prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		statusTransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "status_transitions_total",
			Help: "Total number of successful workflow status transitions.",
		}, []string{"table", "from", "to"})

		auditEntriesWrittenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_entries_written_total",
			Help: "Total number of audit trail entries persisted.",
		}, []string{"action"})

		auditEntriesDropped = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_entries_dropped_total",
			Help: "Total number of audit trail entries lost to a full queue or a storage fault.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			statusTransitionsTotal,
			auditEntriesWrittenTotal,
			auditEntriesDropped,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// StatusTransitions exposes the counter for successful workflow transitions.
func StatusTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return statusTransitionsTotal
}

// AuditEntriesWritten exposes the counter for persisted audit entries.
func AuditEntriesWritten() *prometheus.CounterVec {
	RegisterMetrics()
	return auditEntriesWrittenTotal
}

// AuditEntriesDropped exposes the counter for lost audit entries.
func AuditEntriesDropped() prometheus.Counter {
	RegisterMetrics()
	return auditEntriesDropped
}
