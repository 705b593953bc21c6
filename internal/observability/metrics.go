package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsTotal counts inbound interaction events by action and outcome.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "channelpost_events_total",
		Help: "Total number of interaction events handled",
	}, []string{"action", "outcome"})

	// ToggleTransitions counts toggle results by kind and transition.
	ToggleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "channelpost_toggle_transitions_total",
		Help: "Reaction and collection toggle transitions",
	}, []string{"kind", "transition"})

	// RenderOutcomes counts reconciler decisions.
	RenderOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "channelpost_render_outcomes_total",
		Help: "Render reconciler outcomes (unchanged, edited, failed)",
	}, []string{"outcome"})

	// GatewayResults counts channel gateway calls by operation and result.
	GatewayResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "channelpost_gateway_results_total",
		Help: "Channel gateway call results",
	}, []string{"op", "result"})

	// NotificationsTotal counts author notifications by kind and result.
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "channelpost_notifications_total",
		Help: "Author notifications by kind and result",
	}, []string{"kind", "result"})

	// PinsTotal counts posts promoted by the pin watcher.
	PinsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "channelpost_pins_total",
		Help: "Total number of posts promoted",
	})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "channelpost_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "channelpost_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
