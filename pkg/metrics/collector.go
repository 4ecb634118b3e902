package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	translationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translations_total",
			Help: "Total number of translation backend calls by backend, operation and status",
		},
		[]string{"backend", "operation", "status"},
	)
	translationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "translation_duration_seconds",
			Help:    "Latency of translation backend calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"backend", "operation"},
	)
	inlineQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inline_queries_total",
			Help: "Total number of inline queries by outcome",
		},
		[]string{"outcome"},
	)
	profileCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_cache_requests_total",
			Help: "Profile cache lookups by result",
		},
		[]string{"result"},
	)
	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state per dependency (0 closed, 1 open, 2 half-open)",
		},
		[]string{"name"},
	)
	rateLimitChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratelimit_checks_total",
			Help: "Total number of rate limit checks by backend and result",
		},
		[]string{"backend", "result"},
	)
	rateLimitBackendErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratelimit_backend_errors_total",
			Help: "Rate limit checks that failed in the backend and fell back",
		},
		[]string{"backend"},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
)

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	command = orUnknown(command)
	status = orUnknown(status)

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordTranslation tracks a call to a translation backend.
func RecordTranslation(backend, operation, status string, duration time.Duration) {
	backend = orUnknown(backend)
	operation = orUnknown(operation)

	translationsTotal.WithLabelValues(backend, operation, orUnknown(status)).Inc()
	translationDurationSeconds.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordInlineQuery counts inline queries: translated, incomplete, failed.
func RecordInlineQuery(outcome string) {
	inlineQueriesTotal.WithLabelValues(orUnknown(outcome)).Inc()
}

// RecordProfileCache counts cache hits, misses and errors.
func RecordProfileCache(result string) {
	profileCacheTotal.WithLabelValues(orUnknown(result)).Inc()
}

func SetCircuitBreakerState(name string, state int) {
	circuitBreakerState.WithLabelValues(orUnknown(name)).Set(float64(state))
}

// RecordRateLimitCheck counts an allowed or rejected check.
func RecordRateLimitCheck(backend string, allowed bool) {
	result := "rejected"
	if allowed {
		result = "allowed"
	}
	rateLimitChecksTotal.WithLabelValues(orUnknown(backend), result).Inc()
}

func RecordRateLimitBackendError(backend string) {
	rateLimitBackendErrorsTotal.WithLabelValues(orUnknown(backend)).Inc()
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	errorsTotal.WithLabelValues(orUnknown(errType), orUnknown(severity)).Inc()
}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
