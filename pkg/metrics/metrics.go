package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records login attempts by result (success|failure|invalid|disabled).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymadmin_auth_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// PermissionChecks counts gated route evaluations by domain and outcome (allowed|denied|unauthenticated).
	PermissionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymadmin_permission_checks_total",
			Help: "Total number of permission checks",
		},
		[]string{"domain", "resource", "action", "result"},
	)

	// SessionEvents counts session lifecycle events (opened|closed). Expiry is
	// left to the store TTL and is not counted.
	SessionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymadmin_session_events_total",
			Help: "Total number of session lifecycle events",
		},
		[]string{"event"},
	)

	// MenuReloads counts permission table swaps by result (success|rejected|error).
	MenuReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymadmin_menu_reloads_total",
			Help: "Total number of permission table reloads",
		},
		[]string{"result"},
	)

	// RateLimited counts requests rejected by the login throttle, by route.
	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymadmin_rate_limited_total",
			Help: "Total number of requests rejected by rate limiting",
		},
		[]string{"route"},
	)

	// MaintenanceRuns counts scheduled job executions by job (cache_purge|menu_reload) and result (success|error).
	MaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymadmin_maintenance_runs_total",
			Help: "Total number of maintenance job executions",
		},
		[]string{"job", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymadmin_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
