package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "linguaflow_sessions_active",
		Help: "Number of open translator sessions",
	})

	translationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linguaflow_session_translations_total",
			Help: "Session translation attempts by outcome (success, error, invalid)",
		},
		[]string{"outcome"},
	)

	historyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "linguaflow_session_history_failures_total",
		Help: "Completed translations that could not be saved to history",
	})
)
