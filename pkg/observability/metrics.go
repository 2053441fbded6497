package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Run metrics
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nami_runs_total",
			Help: "Total number of research runs",
		},
		[]string{"strategy", "status"},
	)

	runDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nami_run_duration_seconds",
			Help:    "Research run duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"strategy"},
	)

	runIterations = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nami_run_iterations",
			Help:    "Iterations used per run",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
		[]string{"strategy"},
	)

	// Stage metrics
	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nami_stage_duration_seconds",
			Help:    "Stage execution duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy", "stage"},
	)

	// Agent metrics
	agentInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nami_agent_invocations_total",
			Help: "Total number of agent invocations",
		},
		[]string{"role", "status"},
	)

	agentInvocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nami_agent_invocation_duration_seconds",
			Help:    "Agent invocation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"role"},
	)

	// Quality metrics
	qualityAggregate = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nami_quality_aggregate",
			Help:    "Aggregate quality score of assessed artifacts",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		},
		[]string{"strategy"},
	)

	initOnce sync.Once
)

// InitMetrics registers the Prometheus metrics. Safe to call more than once.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			runsTotal,
			runDuration,
			runIterations,
			stageDuration,
			agentInvocationsTotal,
			agentInvocationDuration,
			qualityAggregate,
		)
	})
}

// MetricsHandler returns an HTTP handler for Prometheus metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordRun records the outcome of one research run
func RecordRun(strategy, status string, iterations int, duration time.Duration) {
	runsTotal.WithLabelValues(strategy, status).Inc()
	runDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	runIterations.WithLabelValues(strategy).Observe(float64(iterations))
}

// RecordStage records stage execution metrics
func RecordStage(strategy, stage string, duration time.Duration) {
	stageDuration.WithLabelValues(strategy, stage).Observe(duration.Seconds())
}

// RecordAgentInvocation records one agent invocation
func RecordAgentInvocation(role, status string, duration time.Duration) {
	agentInvocationsTotal.WithLabelValues(role, status).Inc()
	agentInvocationDuration.WithLabelValues(role).Observe(duration.Seconds())
}

// RecordQuality records an aggregate quality score
func RecordQuality(strategy string, aggregate float64) {
	qualityAggregate.WithLabelValues(strategy).Observe(aggregate)
}
