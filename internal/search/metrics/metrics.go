package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the search pipeline.
type Metrics struct {
	// Cache lookups by mode and outcome (hit/miss)
	CacheLookups *prometheus.CounterVec

	// Provider calls by mode and outcome (ok/error)
	ProviderCalls *prometheus.CounterVec

	// Empty first results that triggered the fallback-region re-query
	FallbackRequeries prometheus.Counter

	// Raw provider records dropped during normalization
	RecordsDropped prometheus.Counter

	// End-to-end search latency by mode
	SearchLatency *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "playfinder_search_cache_lookups_total",
			Help: "Total search cache lookups by mode and outcome",
		}, []string{"mode", "outcome"}),

		ProviderCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "playfinder_search_provider_calls_total",
			Help: "Total upstream provider search calls by mode and outcome",
		}, []string{"mode", "outcome"}),

		FallbackRequeries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "playfinder_search_fallback_requeries_total",
			Help: "Total re-queries against the fallback region after an empty result",
		}),

		RecordsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "playfinder_search_records_dropped_total",
			Help: "Total provider records dropped during normalization",
		}),

		SearchLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "playfinder_search_duration_seconds",
			Help:    "End-to-end search duration by mode",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"mode"}),
	}
}

// IncrementCacheLookup records a cache hit or miss.
func (m *Metrics) IncrementCacheLookup(mode string, hit bool) {
	if m != nil {
		outcome := "miss"
		if hit {
			outcome = "hit"
		}
		m.CacheLookups.WithLabelValues(mode, outcome).Inc()
	}
}

// IncrementProviderCall records one upstream search call.
func (m *Metrics) IncrementProviderCall(mode string, err error) {
	if m != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		m.ProviderCalls.WithLabelValues(mode, outcome).Inc()
	}
}

// IncrementFallbackRequery records an empty-result fallback re-query.
func (m *Metrics) IncrementFallbackRequery() {
	if m != nil {
		m.FallbackRequeries.Inc()
	}
}

// AddRecordsDropped records raw records discarded by the normalizer.
func (m *Metrics) AddRecordsDropped(n int) {
	if m != nil && n > 0 {
		m.RecordsDropped.Add(float64(n))
	}
}

// ObserveSearchLatency records the full pipeline duration.
func (m *Metrics) ObserveSearchLatency(mode string, d time.Duration) {
	if m != nil {
		m.SearchLatency.WithLabelValues(mode).Observe(d.Seconds())
	}
}
