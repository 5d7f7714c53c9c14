package translate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	translationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "linguaflow_translation_requests_total",
			Help: "Total number of translation requests",
		},
		[]string{"engine", "status"},
	)

	translationRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linguaflow_translation_request_duration_seconds",
			Help:    "Duration of translation requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		},
		[]string{"engine", "status"},
	)

	translationRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linguaflow_translation_request_size_bytes",
			Help:    "Size of translation request text in bytes",
			Buckets: []float64{16, 64, 256, 1000, 5000, 20000},
		},
		[]string{"engine"},
	)

	translationResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linguaflow_translation_response_size_bytes",
			Help:    "Size of translation response text in bytes",
			Buckets: []float64{16, 64, 256, 1000, 5000, 20000},
		},
		[]string{"engine"},
	)

	translationChunks = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "linguaflow_translation_chunks",
			Help:    "Number of backend calls a translation request was split into",
			Buckets: []float64{1, 2, 4, 8, 16, 32},
		},
		[]string{"engine"},
	)
)

// recordTranslation records one completed (or failed) translation request.
func recordTranslation(engine string, duration time.Duration, err error, requestSize, responseSize, chunks int) {
	status := "success"
	if err != nil {
		status = "error"
	}
	translationRequestsTotal.WithLabelValues(engine, status).Inc()
	translationRequestDuration.WithLabelValues(engine, status).Observe(duration.Seconds())
	translationRequestSize.WithLabelValues(engine).Observe(float64(requestSize))
	if err == nil {
		translationResponseSize.WithLabelValues(engine).Observe(float64(responseSize))
		translationChunks.WithLabelValues(engine).Observe(float64(chunks))
	}
}
