package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InvitationTransitions counts invitation state transitions by type and outcome
	// (accepted|rejected|canceled).
	InvitationTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workhive_invitation_transitions_total",
			Help: "Total number of invitation state transitions",
		},
		[]string{"type", "outcome"},
	)

	// CascadeCancellations counts competing invitations canceled as acceptance side effects.
	CascadeCancellations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workhive_cascade_cancellations_total",
			Help: "Total number of pending invitations canceled by an acceptance cascade",
		},
	)

	// MembershipsClosed counts project memberships closed by organization removals.
	MembershipsClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workhive_memberships_closed_total",
			Help: "Total number of project memberships closed",
		},
		[]string{"reason"},
	)

	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workhive_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workhive_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
