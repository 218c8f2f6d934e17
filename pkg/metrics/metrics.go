package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealth_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wealth_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Business metrics
	MetricComputationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealth_metric_computations_total",
			Help: "Total number of metric computations",
		},
		[]string{"metric", "result"}, // result: ok, not_applicable, error
	)

	MetricComputationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wealth_metric_computation_duration_seconds",
			Help:    "Metric computation duration in seconds, fact fetch included",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"scope"}, // single, all
	)

	TargetWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealth_target_writes_total",
			Help: "Total number of metric target writes",
		},
		[]string{"metric", "outcome"}, // created, unchanged, deleted
	)

	InsightGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealth_insight_generations_total",
			Help: "Total number of AI insight generations",
		},
		[]string{"trigger", "status"}, // trigger: request, scheduled
	)

	// System metrics
	DatabaseConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wealth_database_connections",
			Help: "Number of database connections",
		},
		[]string{"state"}, // open, idle, in_use
	)

	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wealth_database_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"operation", "table"},
	)

	// External service metrics
	ExternalAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealth_external_api_calls_total",
			Help: "Total number of external API calls",
		},
		[]string{"service", "endpoint", "status_code"},
	)

	ExternalAPICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wealth_external_api_call_duration_seconds",
			Help:    "External API call duration in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
		[]string{"service", "endpoint"},
	)

	CircuitBreakerStateGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "wealth_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"service"},
	)

	// Security metrics
	AuthenticationAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealth_authentication_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"}, // success, failed, blocked
	)

	RateLimitHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wealth_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"endpoint", "ip"},
	)
)

// RecordHTTPRequest records HTTP request metrics
func RecordHTTPRequest(method, endpoint, statusCode string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordMetricComputation records a single metric computation outcome
func RecordMetricComputation(metric, result string) {
	MetricComputationsTotal.WithLabelValues(metric, result).Inc()
}

// RecordTargetWrite records a metric target write
func RecordTargetWrite(metric, outcome string) {
	TargetWritesTotal.WithLabelValues(metric, outcome).Inc()
}

// RecordInsightGeneration records an AI insight generation
func RecordInsightGeneration(trigger, status string) {
	InsightGenerationsTotal.WithLabelValues(trigger, status).Inc()
}

// RecordDatabaseQuery records database query metrics
func RecordDatabaseQuery(operation, table string, duration float64) {
	DatabaseQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordExternalAPICall records external API call metrics
func RecordExternalAPICall(service, endpoint, statusCode string, duration float64) {
	ExternalAPICallsTotal.WithLabelValues(service, endpoint, statusCode).Inc()
	ExternalAPICallDuration.WithLabelValues(service, endpoint).Observe(duration)
}

// UpdateCircuitBreakerState updates circuit breaker state
func UpdateCircuitBreakerState(service string, state float64) {
	CircuitBreakerStateGauge.WithLabelValues(service).Set(state)
}

// RecordAuthenticationAttempt records authentication attempt
func RecordAuthenticationAttempt(result string) {
	AuthenticationAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordRateLimitHit records rate limit hit
func RecordRateLimitHit(endpoint, ip string) {
	RateLimitHitsTotal.WithLabelValues(endpoint, ip).Inc()
}
