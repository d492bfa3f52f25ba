package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for fetching and recording weather.
type Metrics struct {
	Upserts        *prometheus.CounterVec // labels: result={created,replaced,appended}
	StoreErrors    prometheus.Counter
	FetchRequests  *prometheus.CounterVec   // labels: provider, outcome={success,not_found,error}
	FetchDuration  *prometheus.HistogramVec // labels: provider
	GeocodeRetries prometheus.Counter
	GeocodeCache   *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Upserts,
		m.StoreErrors,
		m.FetchRequests,
		m.FetchDuration,
		m.GeocodeRetries,
		m.GeocodeCache,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Upserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_insight",
			Name:      "store_upserts_total",
			Help:      "Observations written to the record store, by outcome.",
		}, []string{"result"}),
		StoreErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_insight",
			Name:      "store_errors_total",
			Help:      "Observations lost because the record store could not be read or written.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_insight",
			Name:      "fetch_requests_total",
			Help:      "Current-weather requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weather_insight",
			Name:      "fetch_duration_seconds",
			Help:      "Current-weather request duration in seconds, retries included.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		GeocodeRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weather_insight",
			Name:      "geocode_retries_total",
			Help:      "Geocoding attempts that failed and were retried.",
		}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weather_insight",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
	}
}
