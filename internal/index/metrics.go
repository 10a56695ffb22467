package index

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// clientMetrics holds Prometheus instrumentation for the Index Client,
// initialized once and registered with the default registry on first use.
type clientMetrics struct {
	once sync.Once

	lookupHit     prometheus.Counter
	lookupMiss    prometheus.Counter
	lookupUnknown prometheus.Counter
	cacheHit      prometheus.Counter
	cacheMiss     prometheus.Counter
	requestSecs   prometheus.Histogram
}

var metrics clientMetrics

func (m *clientMetrics) init() {
	m.once.Do(func() {
		m.lookupHit = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pypm_index_lookup_exists_total",
			Help: "Index lookups that confirmed a distribution exists",
		})
		m.lookupMiss = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pypm_index_lookup_absent_total",
			Help: "Index lookups that confirmed a distribution is absent",
		})
		m.lookupUnknown = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pypm_index_lookup_unknown_total",
			Help: "Index lookups that exhausted retries without a definitive answer",
		})
		m.cacheHit = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pypm_index_cache_hit_total",
			Help: "Index lookups served from cache without a network request",
		})
		m.cacheMiss = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pypm_index_cache_miss_total",
			Help: "Index lookups that required a network request",
		})
		m.requestSecs = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pypm_index_request_seconds",
			Help:    "Duration of Index Client HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		})

		prometheus.MustRegister(
			m.lookupHit, m.lookupMiss, m.lookupUnknown,
			m.cacheHit, m.cacheMiss, m.requestSecs,
		)
	})
}
