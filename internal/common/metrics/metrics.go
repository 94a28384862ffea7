package metrics

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

const namespace = "portfolio"

var (
	// Authorization metrics

	// AuthResolutions tracks how callers were classified
	AuthResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "resolutions_total",
			Help:      "Caller classifications by role",
		},
		[]string{"role"}, // core, delegated, unauthorized, missing, invalid, upstream
	)

	// AuthzDecisions tracks permission decisions
	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authz",
			Name:      "decisions_total",
			Help:      "Permission decisions by page, action and outcome",
		},
		[]string{"page", "action", "outcome"},
	)

	// Approval workflow metrics

	// ApprovalSubmissions tracks pending requests created
	ApprovalSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "approval",
			Name:      "submissions_total",
			Help:      "Pending requests submitted by page and action",
		},
		[]string{"page", "action"},
	)

	// ApprovalDecisions tracks processed requests
	ApprovalDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "approval",
			Name:      "decisions_total",
			Help:      "Pending requests decided by the core administrator",
		},
		[]string{"decision"}, // approved, rejected
	)

	// ExecutionOutcomes tracks execution attempts of approved requests
	ExecutionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "approval",
			Name:      "executions_total",
			Help:      "Execution attempts of approved requests by resource type and result",
		},
		[]string{"resource_type", "result"}, // result: succeeded, failed
	)

	// ExecutionDuration tracks how long executions take
	ExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "approval",
			Name:      "execution_duration_seconds",
			Help:      "Execution duration of approved requests",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"resource_type"},
	)

	// ReconcilerRuns tracks reconciler sweeps
	ReconcilerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "approval",
			Name:      "reconciler_runs_total",
			Help:      "Reconciler sweeps by result",
		},
		[]string{"result"}, // ok, error, skipped
	)

	// InvitationEvents tracks invitation lifecycle transitions
	InvitationEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "invitation",
			Name:      "events_total",
			Help:      "Invitation lifecycle events",
		},
		[]string{"event"}, // created, accepted, expired, revoked
	)

	// Delivery and edge metrics

	// NotificationsSent tracks outbound notifications
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "sent_total",
			Help:      "Outbound notifications by transport, kind and result",
		},
		[]string{"transport", "kind", "result"},
	)

	// RateLimitRejections tracks requests rejected by the rate limiter
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limit_rejections_total",
			Help:      "Requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)

	// CircuitBreakerState tracks circuit breaker state
	// 0 = closed (healthy), 1 = open (tripped), 2 = half-open (testing)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerTrips tracks circuit breaker trip events
	CircuitBreakerTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "circuit_breaker_trips_total",
			Help:      "Total circuit breaker trips",
		},
		[]string{"name"},
	)

	// LeaderStatus is 1 while this instance holds leadership
	LeaderStatus = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "leader",
			Name:      "is_leader",
			Help:      "1 if this instance is the leader",
		},
	)
)

// CircuitBreakerState constants
const (
	CircuitBreakerClosed   = 0
	CircuitBreakerOpen     = 1
	CircuitBreakerHalfOpen = 2
)

// OnBreakerStateChange logs a breaker transition and updates the breaker
// metrics. Use it as gobreaker.Settings.OnStateChange.
func OnBreakerStateChange(name string, from gobreaker.State, to gobreaker.State) {
	slog.Info("Circuit breaker state changed",
		"name", name,
		"from", from.String(),
		"to", to.String())

	var stateValue float64
	switch to {
	case gobreaker.StateClosed:
		stateValue = CircuitBreakerClosed
	case gobreaker.StateOpen:
		stateValue = CircuitBreakerOpen
		CircuitBreakerTrips.WithLabelValues(name).Inc()
	case gobreaker.StateHalfOpen:
		stateValue = CircuitBreakerHalfOpen
	}
	CircuitBreakerState.WithLabelValues(name).Set(stateValue)
}

// ResultLabel maps a success flag to the label used by outcome counters.
func ResultLabel(ok bool) string {
	if ok {
		return "succeeded"
	}
	return "failed"
}
