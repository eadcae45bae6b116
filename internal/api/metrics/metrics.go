// Package metrics defines and registers all custom Prometheus metrics for the
// platform. It is the single source of truth for metric names, labels, and
// help strings. Metrics register with the default registry at import time;
// each service exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "orderhub"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// TokenVerificationsTotal counts bearer token verification outcomes.
// Label:
//   - result: "valid", "expired", "bad_signature" or "malformed"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token verifications, by result.",
	},
	[]string{"result"},
)

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "not_found" or "invalid_credentials"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// UsersRegisteredTotal counts successfully registered accounts.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of successfully registered users.",
	},
)

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersCreatedTotal counts newly created orders.
var OrdersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created.",
	},
)

// OrderStatusUpdatesTotal counts order status changes.
// Label:
//   - status: the new status applied ("in_progress", "completed", "cancelled", ...)
var OrderStatusUpdatesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_updates_total",
		Help:      "Total number of order status updates, by new status.",
	},
	[]string{"status"},
)

// ── Gateway metrics ───────────────────────────────────────────────────────────

// GatewayRateLimitedTotal counts requests rejected by the gateway rate limiter.
var GatewayRateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_rate_limited_total",
		Help:      "Total number of requests rejected by the gateway rate limiter.",
	},
)

// GatewayUpstreamErrorsTotal counts failed forwards to backend services.
// Label:
//   - backend: the routing prefix of the failed target ("users" or "orders")
var GatewayUpstreamErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gateway_upstream_errors_total",
		Help:      "Total number of backend forwarding failures, by backend.",
	},
	[]string{"backend"},
)
