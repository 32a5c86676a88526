package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// REQUEST METRICS
// =============================================================================

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jdwp_requests_total",
			Help: "Total number of JDWP command requests sent",
		},
		[]string{"command_set", "command", "status"}, // status: ok, error, transport_error
	)

	requestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jdwp_request_duration_seconds",
			Help:    "JDWP request round-trip duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"command_set", "command"},
	)
)

// =============================================================================
// EVENT METRICS
// =============================================================================

var (
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jdwp_events_total",
			Help: "Total number of JDWP events dispatched",
		},
		[]string{"event_kind", "status"}, // status: delivered, dropped, queue_full, unregistered
	)
)

// =============================================================================
// POOL METRICS
// =============================================================================

var (
	poolSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jdwp_pool_entries",
			Help: "Number of interned entities currently held per entity kind",
		},
		[]string{"entity_kind"},
	)

	hookQueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "jdwp_hook_queue_depth",
			Help: "Number of undelivered events buffered per event hook",
		},
		[]string{"request_id"},
	)
)

// =============================================================================
// PUBLIC API
// =============================================================================

// RecordRequest records a completed JDWP request/reply round trip.
func RecordRequest(commandSet, command string, status string, durationSeconds float64) {
	requestsTotal.WithLabelValues(commandSet, command, status).Inc()
	requestDurationSeconds.WithLabelValues(commandSet, command).Observe(durationSeconds)
}

// RecordEvent records the outcome of dispatching one decoded event.
func RecordEvent(eventKind string, status string) {
	eventsTotal.WithLabelValues(eventKind, status).Inc()
}

// SetPoolSize records the current size of one entity kind's interning pool.
func SetPoolSize(entityKind string, size int) {
	poolSize.WithLabelValues(entityKind).Set(float64(size))
}

// SetHookQueueDepth records the current buffered depth of one hook's queue.
func SetHookQueueDepth(requestID string, depth int) {
	hookQueueDepth.WithLabelValues(requestID).Set(float64(depth))
}
