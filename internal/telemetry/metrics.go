// Package telemetry registers the gateway's Prometheus metrics, following
// the explicit-registration convention used by mcp-tools/internal/infrastructure/metrics.
package telemetry

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestsTotal *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	SessionsActive prometheus.Gauge
	SessionsTotal  prometheus.Counter

	ToolCallsTotal  *prometheus.CounterVec
	ToolDuration    *prometheus.HistogramVec
	SandboxTraps    *prometheus.CounterVec

	BridgeCircuitState *prometheus.GaugeVec
	BridgeRetries      *prometheus.CounterVec

	MCTSIterationsTotal *prometheus.CounterVec
	MCTSDuration        prometheus.Histogram

	CommitteeEvaluationDuration *prometheus.HistogramVec

	MemoryItemsTotal prometheus.Gauge
	MemorySearchDuration prometheus.Histogram
)

func init() {
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sweetmcp", Subsystem: "gateway", Name: "requests_total",
		Help: "Total normalized requests processed, by protocol and status.",
	}, []string{"protocol", "status"})

	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sweetmcp", Subsystem: "gateway", Name: "request_duration_seconds",
		Help:    "Request handling duration in seconds.",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	}, []string{"protocol"})

	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sweetmcp", Subsystem: "sse", Name: "sessions_active",
		Help: "Currently open SSE sessions.",
	})

	SessionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sweetmcp", Subsystem: "sse", Name: "sessions_total",
		Help: "Total SSE sessions created.",
	})

	ToolCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sweetmcp", Subsystem: "plugin", Name: "tool_calls_total",
		Help: "Total tool invocations by tool name and status.",
	}, []string{"tool_name", "status"})

	ToolDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sweetmcp", Subsystem: "plugin", Name: "tool_duration_seconds",
		Help:    "Tool execution duration in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	}, []string{"tool_name"})

	SandboxTraps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sweetmcp", Subsystem: "plugin", Name: "sandbox_traps_total",
		Help: "Sandbox wall-time/trap terminations by tool name.",
	}, []string{"tool_name", "reason"})

	BridgeCircuitState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sweetmcp", Subsystem: "bridge", Name: "circuit_breaker_state",
		Help: "Circuit breaker state per peer (0=closed, 0.5=half-open, 1=open).",
	}, []string{"peer"})

	BridgeRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sweetmcp", Subsystem: "bridge", Name: "retries_total",
		Help: "Bridge forward retry attempts by peer.",
	}, []string{"peer"})

	MCTSIterationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sweetmcp", Subsystem: "mcts", Name: "iterations_total",
		Help: "Completed MCTS iterations by termination reason.",
	}, []string{"termination_reason"})

	MCTSDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sweetmcp", Subsystem: "mcts", Name: "search_duration_seconds",
		Help:    "Wall-clock duration of a full MCTS search.",
		Buckets: prometheus.DefBuckets,
	})

	CommitteeEvaluationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sweetmcp", Subsystem: "committee", Name: "evaluation_duration_seconds",
		Help:    "Committee round evaluation duration in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}, []string{"phase"})

	MemoryItemsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sweetmcp", Subsystem: "memory", Name: "items_total",
		Help: "Total memory items currently stored.",
	})

	MemorySearchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sweetmcp", Subsystem: "memory", Name: "search_duration_seconds",
		Help:    "Vector search duration in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	prometheus.MustRegister(
		RequestsTotal, RequestDuration,
		SessionsActive, SessionsTotal,
		ToolCallsTotal, ToolDuration, SandboxTraps,
		BridgeCircuitState, BridgeRetries,
		MCTSIterationsTotal, MCTSDuration,
		CommitteeEvaluationDuration,
		MemoryItemsTotal, MemorySearchDuration,
	)
}
