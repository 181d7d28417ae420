package variant

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts the cache traffic of the variant validation layer.
type Metrics struct {
	Hits     prometheus.Counter
	Misses   prometheus.Counter
	Failures prometheus.Counter
}

// NewMetrics registers the variant cache counters with reg. A nil registerer
// yields unregistered counters, which tests use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "phetools",
			Subsystem: "variant_cache",
			Name:      "hits_total",
			Help:      "Variant lookups answered from the cache.",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "phetools",
			Subsystem: "variant_cache",
			Name:      "misses_total",
			Help:      "Variant lookups that required a network call.",
		}),
		Failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "phetools",
			Subsystem: "variant_cache",
			Name:      "failures_total",
			Help:      "Variant validations that returned an error.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Hits, m.Misses, m.Failures)
	}
	return m
}
