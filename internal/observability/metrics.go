package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: dashboard poll gaps (client gone) or spikes.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: slow history aggregation.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation during shutdown drain.
	HTTPRequestsInFlight prometheus.Gauge

	// Counter reads by outcome. Watch for: error ratio (counters unreadable).
	SamplesTotal *prometheus.CounterVec

	// Bytes observed per direction (down/up). rate() gives throughput.
	SampleBytesTotal *prometheus.CounterVec

	// Records currently held in the history store. Watch for: approach to cap.
	StoreRecords prometheus.Gauge

	// History persistence latency. Watch for: slow disk, growing JSON payloads.
	PersistDuration prometheus.Histogram

	// Records removed by retention cleanup.
	CleanupRemovedTotal prometheus.Counter

	// Cache hits by response type (history/summary). Misses = lookups - hits.
	CacheHitsTotal *prometheus.CounterVec

	// Cache backend failures by operation.
	CacheErrorsTotal *prometheus.CounterVec

	// Rate limit denials on the API. Watch for: runaway polling clients.
	RateLimitDeniedTotal prometheus.Counter

	// Network name probes by outcome (success/error/breaker_open).
	NetworkProbesTotal *prometheus.CounterVec

	// Circuit breaker transitions per component.
	circuitBreakerTransitions *prometheus.CounterVec

	// Circuit breaker state per component (0 closed, 1 open, 2 half-open).
	circuitBreakerState *prometheus.GaugeVec

	// In-flight requests observed at shutdown.
	shutdownInFlight prometheus.Gauge
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	SamplesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "samplesTotal",
			Help: "Total number of interface counter reads",
		},
		[]string{"status"},
	)
	SampleBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sampleBytesTotal",
			Help: "Bytes observed by the sampler per direction",
		},
		[]string{"direction"},
	)
	StoreRecords = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storeRecords",
			Help: "History records currently held in memory",
		},
	)
	PersistDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "persistDurationSeconds",
			Help:    "History persistence latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)
	CleanupRemovedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cleanupRemovedTotal",
			Help: "Total records removed by retention cleanup",
		},
	)
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheHitsTotal",
			Help: "Total number of cache hits by response type",
		},
		[]string{"cacheType"},
	)
	CacheErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheErrorsTotal",
			Help: "Cache backend failures by operation",
		},
		[]string{"operation"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)
	NetworkProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "networkProbesTotal",
			Help: "Network name probe attempts by outcome",
		},
		[]string{"status"},
	)
	circuitBreakerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuitBreakerTransitionsTotal",
			Help: "Circuit breaker state transitions",
		},
		[]string{"component", "from", "to"},
	)
	circuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuitBreakerState",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"component"},
	)
	shutdownInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shutdownInFlightRequests",
			Help: "In-flight requests observed when shutdown began",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		SamplesTotal, SampleBytesTotal,
		StoreRecords, PersistDuration, CleanupRemovedTotal,
		CacheHitsTotal, CacheErrorsTotal,
		RateLimitDeniedTotal, NetworkProbesTotal,
		circuitBreakerTransitions, circuitBreakerState,
		shutdownInFlight,
	)
}

// RecordCircuitBreakerTransition records a state transition for the component.
func RecordCircuitBreakerTransition(component, from, to string) {
	circuitBreakerTransitions.WithLabelValues(component, from, to).Inc()
}

// SetCircuitBreakerStateGauge sets the numeric state gauge for the component.
func SetCircuitBreakerStateGauge(component string, state int) {
	circuitBreakerState.WithLabelValues(component).Set(float64(state))
}

// RecordShutdownInFlight records the in-flight count observed at shutdown.
func RecordShutdownInFlight(n int64) {
	shutdownInFlight.Set(float64(n))
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
