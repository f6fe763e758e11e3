package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AccountTransitions counts state machine outcomes by action (register|verify|reminder|reset)
	// and outcome (success|exist|not_found|error).
	AccountTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_transitions_total",
			Help: "Total number of account state transitions by outcome",
		},
		[]string{"action", "outcome"},
	)

	// LoginAttempts records login attempts by result (success|failure).
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_login_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "account_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
