// Package metrics wires Prometheus counters and histograms for the HTTP
// surface, the object and container services, the cache, and the garbage
// collector.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every Prometheus collector the store exposes at /metrics.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ObjectGetTotal    *prometheus.CounterVec
	ObjectInsertTotal *prometheus.CounterVec
	ObjectRemoveTotal *prometheus.CounterVec

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	ContainersTotal prometheus.Gauge
	GCSweepsTotal   prometheus.Counter
	GCDroppedTotal  prometheus.Counter
}

// New registers every collector against registry and returns the bundle.
func New(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "palisade",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests, by route and status code.",
		}, []string{"route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "palisade",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		ObjectGetTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "palisade",
			Name:      "object_get_total",
			Help:      "Object get requests, by outcome.",
		}, []string{"outcome"}),
		ObjectInsertTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "palisade",
			Name:      "object_insert_total",
			Help:      "Object insert requests, by outcome.",
		}, []string{"outcome"}),
		ObjectRemoveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "palisade",
			Name:      "object_remove_total",
			Help:      "Object remove requests, by outcome.",
		}, []string{"outcome"}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "palisade",
			Name:      "cache_hits_total",
			Help:      "Frontline cache hits.",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "palisade",
			Name:      "cache_misses_total",
			Help:      "Frontline cache misses.",
		}),
		ContainersTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "palisade",
			Name:      "containers_total",
			Help:      "Current entries in the container index.",
		}),
		GCSweepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "palisade",
			Name:      "gc_sweeps_total",
			Help:      "Garbage collector sweep iterations.",
		}),
		GCDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "palisade",
			Name:      "gc_dropped_partitions_total",
			Help:      "Partitions dropped by the garbage collector.",
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
		m.ObjectGetTotal, m.ObjectInsertTotal, m.ObjectRemoveTotal,
		m.CacheHitsTotal, m.CacheMissesTotal,
		m.ContainersTotal, m.GCSweepsTotal, m.GCDroppedTotal,
	)
	return m
}
