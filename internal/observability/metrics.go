// Package observability provides metric and tracing instrumentation.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadline_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// ActiveWebSockets is the gauge of currently open WebSocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "threadline_websocket_connections",
		Help: "Number of currently open WebSocket connections",
	})

	// WebSocketActionsTotal counts dispatched WebSocket actions by action and outcome.
	WebSocketActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadline_websocket_actions_total",
		Help: "Total WebSocket actions dispatched by action and outcome",
	}, []string{"action", "outcome"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "threadline_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)
