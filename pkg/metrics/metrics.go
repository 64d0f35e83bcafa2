package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Custom histogram buckets for API response times ranging from milliseconds to 30+ seconds.
	// Note: no 60s bucket to avoid histogram_quantile interpolation issues with low sample counts
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Database Client Metrics. The client label is "postgres" or "rest".
	DBRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_client_operation_duration_seconds",
			Help:    "Database client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"client", "operation", "status"},
	)

	DBRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_client_operation_total",
			Help: "Total number of database client operations",
		},
		[]string{"client", "operation", "status"},
	)

	// DataAccessTotal counts which path finally served a resilient read or write:
	// primary, fallback, default or failed.
	DataAccessTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novocode_data_access_total",
			Help: "Total number of data access operations by serving path",
		},
		[]string{"operation", "path"},
	)

	HealthProbeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novocode_db_health_probe_total",
			Help: "Total number of primary store health probes",
		},
		[]string{"result"},
	)

	PrimaryHealthy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "novocode_db_primary_healthy",
			Help: "Cached health of the primary store (1 healthy, 0 unhealthy)",
		},
	)

	DBPoolConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_client_connections",
			Help: "Primary store pool connections by state",
		},
		[]string{"state"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	// Business Metrics
	LeadSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novocode_lead_submissions_total",
			Help: "Total number of contact and budget form submissions",
		},
		[]string{"status"},
	)

	TestimonialTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novocode_testimonial_transitions_total",
			Help: "Total number of testimonial state machine transitions",
		},
		[]string{"action", "status"},
	)

	TestimonialRequestsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novocode_testimonial_requests_total",
			Help: "Total number of testimonial requests created for leads",
		},
		[]string{"email_status"},
	)

	AdminLogins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "novocode_admin_logins_total",
			Help: "Total number of back-office login attempts",
		},
		[]string{"status"},
	)

	// Infrastructure Metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// RecordPoolStats publishes a pool snapshot
func RecordPoolStats(total, idle, acquired int32) {
	DBPoolConnections.WithLabelValues("total").Set(float64(total))
	DBPoolConnections.WithLabelValues("idle").Set(float64(idle))
	DBPoolConnections.WithLabelValues("acquired").Set(float64(acquired))
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
