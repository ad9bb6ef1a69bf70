package weather

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

var (
	// refreshTotal counts refresh attempts per caller by outcome.
	refreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_refresh_total",
			Help: "Total number of weather cache refreshes by outcome.",
		},
		[]string{"outcome"},
	)

	// providerDuration records upstream lookup latency. Collapsed concurrent
	// refreshes are observed once.
	providerDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "weather_provider_duration_seconds",
			Help:    "Duration of weather provider lookups in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(refreshTotal, providerDuration)
}
