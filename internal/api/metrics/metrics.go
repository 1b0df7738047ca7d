// Package metrics defines and registers all custom Prometheus metrics for the
// clock-in service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clockin"

// ── Clock metrics ─────────────────────────────────────────────────────────────

// ClockEventsTotal counts events appended to the log.
// Label:
//   - action: "clock-in" or "clock-out"
var ClockEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clock_events_total",
		Help:      "Total number of clock events appended to the log.",
	},
	[]string{"action"},
)

// ClockErrorsTotal counts clock requests that failed.
// Label:
//   - reason: "invalid_input", "worker_not_found" or "storage_unavailable"
var ClockErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clock_errors_total",
		Help:      "Total number of clock requests that failed.",
	},
	[]string{"reason"},
)

// ClockDedupTotal counts idempotency-key lookups.
// Label:
//   - result: "hit" (replayed, nothing appended) or "miss"
var ClockDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "clock_dedup_total",
		Help:      "Total number of idempotency-key lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Storage metrics ───────────────────────────────────────────────────────────

// EventsPrunedTotal counts events permanently removed by retention.
var EventsPrunedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_pruned_total",
		Help:      "Total number of events discarded by the retention pruner.",
	},
)

// StorageLockWait measures how long writers wait for the exclusive log lock.
// Label:
//   - backend: "file", "sqlite" or "mongo"
var StorageLockWait = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "storage_lock_wait_seconds",
		Help:      "Time spent acquiring the exclusive event log lock.",
		Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 2.5, 5},
	},
	[]string{"backend"},
)

// ── Attendance metrics ────────────────────────────────────────────────────────

// AttendanceFlagged reports the size of the last evaluated late/absent sets.
// Label:
//   - kind: "late" or "absent"
var AttendanceFlagged = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "attendance_flagged",
		Help:      "Number of workers flagged by the last attendance evaluation.",
	},
	[]string{"kind"},
)

// ── Batch metrics ─────────────────────────────────────────────────────────────

// BatchQueueDepth tracks the number of clock requests waiting in each
// dispatcher worker channel.
var BatchQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "batch_queue_depth",
		Help:      "Current number of clock requests pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// BatchProcessingDuration measures how long a queued clock request takes.
// Label:
//   - result: "ok" or "error"
var BatchProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_processing_duration_seconds",
		Help:      "Duration of queued clock request processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)
