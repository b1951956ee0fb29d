// Package metrics defines the custom Prometheus metrics of the DEFM console.
// It is the single source of truth for metric names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "defm"

// ── API client metrics ────────────────────────────────────────────────────────

// ClientRequestsTotal counts backend requests issued by the API client.
// Labels:
//   - resource: resource group of the call (e.g. "cases", "evidence")
//   - method: HTTP method
//   - outcome: "ok" or the failure kind (e.g. "unauthorized", "network")
var ClientRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_requests_total",
		Help:      "Total number of backend requests issued, by resource, method and outcome.",
	},
	[]string{"resource", "method", "outcome"},
)

// ClientRequestDuration measures backend round trips, including body decoding.
// Labels:
//   - resource: resource group of the call
//   - outcome: "ok" or the failure kind
var ClientRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "client_request_duration_seconds",
		Help:      "Duration of backend requests from send to decoded response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"resource", "outcome"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionLoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var SessionLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionAuthenticated is 1 while the console holds a validated session.
var SessionAuthenticated = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_authenticated",
		Help:      "1 when a validated session is held, 0 otherwise.",
	},
)

// ── Dispatcher metrics ────────────────────────────────────────────────────────

// DispatchTasksTotal counts tasks settled by the concurrent dispatcher.
// Label:
//   - result: "ok" or "error"
var DispatchTasksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatch_tasks_total",
		Help:      "Total number of independent tasks settled by the dispatcher, by result.",
	},
	[]string{"result"},
)

// ── Development backend metrics ───────────────────────────────────────────────

// BackendAuditEntriesTotal counts audit entries written by the development backend.
// Label:
//   - entity_type: audited entity (e.g. "case", "evidence")
var BackendAuditEntriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_audit_entries_total",
		Help:      "Total number of audit log entries appended by the development backend.",
	},
	[]string{"entity_type"},
)
