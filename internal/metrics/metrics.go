// Package metrics registers the Prometheus metrics used by the admin panel.
// Import this package (via blank import) from the server entry point to
// register all metrics before the /metrics handler is mounted.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Hook chain counters and histograms.
var (
	// HookInvocations counts hook chains executed, labelled by hook name and
	// outcome ("success", "error"). Fast-path calls with no matching plugin
	// implementations are not counted.
	HookInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expanel_hook_invocations_total",
			Help: "Total number of hook chains executed.",
		},
		[]string{"hook", "status"},
	)

	// HookDuration observes full-chain execution latency in seconds.
	HookDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "expanel_hook_duration_seconds",
			Help:    "Hook chain execution duration in seconds.",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"hook"},
	)

	// HookContractViolations counts observe-mode implementations that
	// received a non-empty inner result.
	HookContractViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expanel_hook_contract_violations_total",
			Help: "Total number of observer hooks rejected for consuming a result.",
		},
		[]string{"hook"},
	)
)

// View-level counters.
var (
	// UserMessages counts messages emitted to users, labelled by level.
	UserMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expanel_user_messages_total",
			Help: "Total number of user-facing messages emitted by views.",
		},
		[]string{"level"},
	)

	// NavMenuCache counts nav menu cache lookups by result ("hit", "miss").
	NavMenuCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expanel_nav_menu_cache_total",
			Help: "Total number of navigation menu cache lookups.",
		},
		[]string{"result"},
	)
)
