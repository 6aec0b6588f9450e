// Package metrics defines and registers all custom Prometheus metrics for the
// marketplace API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts auth operations by outcome.
// Labels:
//   - operation: signup, signin, refresh, logout, change_role
//   - result: success or failure
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of auth operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// TokenVerificationsTotal counts token verifications.
// Labels:
//   - class: access or refresh
//   - result: "ok" or the failure reason (malformed, signature, expired, wrong_class, claims)
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of token verifications, by token class and result.",
	},
	[]string{"class", "result"},
)

// ── Password hashing metrics ──────────────────────────────────────────────────

// PasswordHashDuration measures bcrypt work, excluding time spent queued.
// Label:
//   - op: hash or verify
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of bcrypt hash and verify calls.",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	},
	[]string{"op"},
)

// HashQueueDepth is the number of hashing jobs waiting for a worker.
var HashQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "hash_queue_depth",
		Help:      "Current number of password hashing jobs waiting for a worker.",
	},
)

// ── Balance metrics ───────────────────────────────────────────────────────────

// BalanceOperationsTotal counts applied balance changes.
// Label:
//   - kind: topup or decrease
var BalanceOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "balance_operations_total",
		Help:      "Total number of balance operations applied, by kind.",
	},
	[]string{"kind"},
)

// BalanceAmountTotal sums the absolute amounts moved, by kind.
var BalanceAmountTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "balance_amount_total",
		Help:      "Total amount moved by balance operations, by kind.",
	},
	[]string{"kind"},
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// ObserveAuth records the outcome of an auth operation.
func ObserveAuth(operation string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	AuthAttemptsTotal.WithLabelValues(operation, result).Inc()
}
