// Package metrics defines and registers the custom Prometheus metrics of the
// storefront services. It is the single source of truth for metric names,
// labels, and help strings.
//
// Collectors are registered with the default registry on import; HTTP
// request metrics come from echoprometheus and are not repeated here.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected credentials.
// Label:
//   - reason: "expired", "malformed", "bad_signature", "revoked", "claims",
//     "missing", "basic" or "invalid"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of rejected tokens or basic-auth attempts, by reason.",
	},
	[]string{"reason"},
)

// AuthorizationDeniedTotal counts requests stopped by a role check.
var AuthorizationDeniedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denied_total",
		Help:      "Total number of requests rejected by a role guard.",
	},
)

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersCreatedTotal counts persisted orders.
var OrdersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created.",
	},
)

// ProductLookupDuration measures calls to the catalog service.
// Label:
//   - result: "ok", "not_found" or "error"
var ProductLookupDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "product_lookup_duration_seconds",
		Help:      "Duration of product price lookups against the catalog service.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Request log metrics ───────────────────────────────────────────────────────

// RequestLogDroppedTotal counts records discarded because the queue was full.
var RequestLogDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_log_dropped_total",
		Help:      "Total number of request log records dropped due to a full queue.",
	},
)

// RequestLogWriteErrorsTotal counts records the sink failed to persist.
var RequestLogWriteErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_log_write_errors_total",
		Help:      "Total number of request log records that failed to persist.",
	},
)

// RequestLogQueueDepth tracks the records waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index
var RequestLogQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "request_log_queue_depth",
		Help:      "Current number of request log records pending per worker.",
	},
	[]string{"worker_id"},
)
