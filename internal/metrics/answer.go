package metrics

import "github.com/prometheus/client_golang/prometheus"

// Answer generation Prometheus metrics.
var (
	AnswerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helio",
			Name:      "answer_requests_total",
			Help:      "Total answer generation requests by model and status",
		},
		[]string{"model", "status"},
	)

	AnswerRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "helio",
			Name:      "answer_request_duration_seconds",
			Help:      "Answer generation request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)
)

var answerMetricsRegistered bool

// RegisterAnswerMetrics registers Prometheus answer metrics. Must be called once from main.
func RegisterAnswerMetrics() {
	if answerMetricsRegistered {
		return
	}
	prometheus.MustRegister(AnswerRequestsTotal)
	prometheus.MustRegister(AnswerRequestDuration)
	answerMetricsRegistered = true
}
