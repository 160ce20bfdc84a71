// Package metrics defines and registers all custom Prometheus metrics for the
// events API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation and exposed on /metrics next to the echo request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "events_api"

// ── Attendance metrics ────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "ok", "conflict", "not_found", "forbidden" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of attendance registrations, by result.",
	},
	[]string{"result"},
)

// CancellationsTotal counts cancellation attempts.
// Label:
//   - result: "ok", "not_found" or "error"
var CancellationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cancellations_total",
		Help:      "Total number of attendance cancellations, by result.",
	},
	[]string{"result"},
)

// CompensationsTotal counts undo runs after a partially applied operation
// on stores without transactions.
// Labels:
//   - operation: "register" or "cancel"
//   - outcome: "ok" or "failed" (at least one undo step failed)
var CompensationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "compensations_total",
		Help:      "Total number of compensation runs, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// ReconciledLinksTotal counts membership links repaired by reconciliation.
// Label:
//   - side: "event" or "user"
var ReconciledLinksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconciled_links_total",
		Help:      "Total number of membership links repaired by reconciliation.",
	},
	[]string{"side"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsCreatedTotal counts newly created events.
// Label:
//   - category: the canonical event category
var EventsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_created_total",
		Help:      "Total number of events created, by category.",
	},
	[]string{"category"},
)

// EventCacheTotal counts read-through cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var EventCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_cache_total",
		Help:      "Total number of event cache lookups, labelled by result.",
	},
	[]string{"result"},
)

// ── Blob cleanup metrics ──────────────────────────────────────────────────────

// CleanupQueueDepth tracks the number of blob deletions waiting per worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var CleanupQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cleanup_queue_depth",
		Help:      "Current number of blob deletions pending in each cleanup worker channel.",
	},
	[]string{"worker_id"},
)

// CleanupTotal counts processed blob deletions.
// Label:
//   - result: "ok", "error" or "dropped" (queue full or stopped)
var CleanupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cleanup_total",
		Help:      "Total number of blob deletions handled by the cleanup dispatcher.",
	},
	[]string{"result"},
)

// CleanupDuration measures how long a single blob deletion takes.
var CleanupDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cleanup_duration_seconds",
		Help:      "Duration of a blob deletion from dequeue to completion.",
		Buckets:   prometheus.DefBuckets,
	},
)
