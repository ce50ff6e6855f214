// Package prom adapts the cache.Metrics and cache.LatencyRecorder
// observability hooks onto Prometheus client_golang, the way the teacher's
// metrics/prom package adapted the equivalent TTL-cache interfaces. Gone are
// the cost gauge and the ttl/capacity eviction-reason labels (this domain
// has neither); added are the delayed-hit counter and the latency histogram
// simulator.Observe feeds to report end-to-end request latency.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tsunrise/delayed-hits/cache"
	"github.com/tsunrise/delayed-hits/simtime"
)

// Adapter implements cache.Metrics and cache.LatencyRecorder, exporting
// Prometheus counters/gauges/histograms. Safe for concurrent use: every
// Prometheus metric type is goroutine-safe.
type Adapter struct {
	hits        prometheus.Counter
	misses      prometheus.Counter
	evicts      *prometheus.CounterVec
	sizeEnt     prometheus.Gauge
	delayedHits prometheus.Counter
	latency     prometheus.Histogram
}

// New constructs a Prometheus metrics adapter.
//   - reg:         registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "hits_total",
			Help:        "Cache hits",
			ConstLabels: constLabels,
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "misses_total",
			Help:        "Cache misses",
			ConstLabels: constLabels,
		}),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Cache evictions by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		sizeEnt: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}),
		delayedHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "delayed_hits_total",
			Help:        "Arrivals that coalesced onto an already in-flight miss",
			ConstLabels: constLabels,
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "request_latency_seconds",
			Help:        "End-to-end request latency: completion_timestamp - request_timestamp",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.sizeEnt, a.delayedHits, a.latency)
	return a
}

// Hit increments the hit counter.
func (a *Adapter) Hit() { a.hits.Inc() }

// Miss increments the miss counter.
func (a *Adapter) Miss() { a.misses.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r cache.EvictReason) {
	a.evicts.WithLabelValues(reason(r)).Inc()
}

// Size updates the resident-entry-count gauge.
func (a *Adapter) Size(entries int) {
	a.sizeEnt.Set(float64(entries))
}

// DelayedHit increments the delayed-hit counter.
func (a *Adapter) DelayedHit() { a.delayedHits.Inc() }

// ObserveLatency records one request's end-to-end latency, converting from
// simtime.TimeUnit (nanoseconds) to the seconds Prometheus histograms
// conventionally use.
func (a *Adapter) ObserveLatency(latency simtime.TimeUnit) {
	a.latency.Observe(latency.Duration().Seconds())
}

// reason maps EvictReason to a stable label value. There is currently only
// one reason an entry ever leaves residency; the label stays in place so a
// future policy-specific reason doesn't require a metric schema change.
func reason(r cache.EvictReason) string {
	switch r {
	case cache.EvictPolicy:
		return "policy"
	default:
		return "unknown"
	}
}

// Compile-time checks: ensure Adapter implements both observability contracts.
var (
	_ cache.Metrics         = (*Adapter)(nil)
	_ cache.LatencyRecorder = (*Adapter)(nil)
)
