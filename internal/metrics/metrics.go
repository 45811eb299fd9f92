// Package metrics exposes Prometheus instrumentation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "telefleet"

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "login",
			Name:      "attempts_total",
			Help:      "Login flow outcomes by final state",
		},
		[]string{"outcome"},
	)

	BroadcastAccountsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "broadcast",
			Name:      "accounts_total",
			Help:      "Per-account broadcast outcomes",
		},
		[]string{"action", "result"},
	)

	BroadcastDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "broadcast",
			Name:      "run_duration_seconds",
			Help:      "Duration of a whole broadcast run",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"action"},
	)

	BotUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "bot",
			Name:      "updates_total",
			Help:      "Bot updates handled by kind",
		},
		[]string{"kind"},
	)
)

func RecordLogin(outcome string) {
	LoginsTotal.WithLabelValues(outcome).Inc()
}

func RecordBroadcastAccount(action string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	BroadcastAccountsTotal.WithLabelValues(action, result).Inc()
}

func RecordBroadcastRun(action string, duration time.Duration) {
	BroadcastDuration.WithLabelValues(action).Observe(duration.Seconds())
}

func RecordBotUpdate(kind string) {
	BotUpdatesTotal.WithLabelValues(kind).Inc()
}
