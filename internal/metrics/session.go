package metrics

import "github.com/prometheus/client_golang/prometheus"

// Session Prometheus metrics.
var (
	SessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helio",
			Name:      "sessions_total",
			Help:      "Total finished search sessions by terminal phase",
		},
		[]string{"outcome"},
	)

	SessionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "helio",
			Name:      "session_duration_seconds",
			Help:      "Search session duration from send to terminal outcome",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	StreamEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "helio",
			Name:      "stream_events_total",
			Help:      "Total parsed stream events by type",
		},
		[]string{"type"},
	)

	FramesDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "helio",
			Name:      "frames_dropped_total",
			Help:      "Total frames dropped as keep-alive noise or malformed payload",
		},
	)
)

var sessionMetricsRegistered bool

// RegisterSessionMetrics registers Prometheus session metrics. Must be called once from main.
func RegisterSessionMetrics() {
	if sessionMetricsRegistered {
		return
	}
	prometheus.MustRegister(SessionsTotal)
	prometheus.MustRegister(SessionDuration)
	prometheus.MustRegister(StreamEventsTotal)
	prometheus.MustRegister(FramesDroppedTotal)
	sessionMetricsRegistered = true
}
