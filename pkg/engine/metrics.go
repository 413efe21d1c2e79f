package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// IntentTotal counts handled intents by outcome.
	IntentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursesensei_intent_total",
			Help: "Total number of intents handled, by outcome",
		},
		[]string{"intent", "outcome"},
	)

	// IntentDuration tracks handler latency.
	IntentDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coursesensei_intent_duration_seconds",
			Help:    "Time spent resolving an intent",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		},
		[]string{"intent"},
	)
)

func init() {
	prometheus.MustRegister(IntentTotal)
	prometheus.MustRegister(IntentDuration)
}
