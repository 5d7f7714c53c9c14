package history

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var historyOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "linguaflow_history_operations_total",
		Help: "History mutations by operation and outcome.",
	},
	[]string{"operation", "status"},
)

func observeOp(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	historyOperations.WithLabelValues(op, status).Inc()
}
