package language

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var detectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "linguaflow_language_detections_total",
		Help: "Total number of language detections by engine and detected language",
	},
	[]string{"engine", "language"},
)

func observeDetection(engine Engine, code string, ok bool) {
	if !ok {
		code = "none"
	}
	detectionsTotal.WithLabelValues(string(engine), code).Inc()
}
