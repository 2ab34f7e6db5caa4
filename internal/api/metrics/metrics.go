// Package metrics defines and registers all custom Prometheus metrics for the
// user directory service. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "directory"

// LoginAttemptsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid" (any credential failure), or "throttled"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, labelled by outcome.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration attempts by outcome.
// Label:
//   - result: "success", "conflict" (email taken), or "invalid"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, labelled by outcome.",
	},
	[]string{"result"},
)

// SessionReadsTotal counts session derivations performed by the session
// middleware.
// Label:
//   - result: "ok", "invalid" (bad or expired token), or "absent"
var SessionReadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_reads_total",
		Help:      "Total number of session token reads, labelled by result.",
	},
	[]string{"result"},
)

// GateDecisionsTotal counts request gate outcomes.
// Label:
//   - decision: "allow", "login_redirect", or "dashboard_redirect"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of request gate decisions, labelled by outcome.",
	},
	[]string{"decision"},
)
