package cache

import "github.com/tsunrise/delayed-hits/simtime"

// EvictReason explains why an entry was removed from a shard's residency.
// The delayed-hits domain has no TTL or cost-based eviction (no Non-goal
// admits one), so, unlike the teacher's EvictReason, there is exactly one
// reason an entry ever leaves residency: the active policy chose it as the
// minimum-priority victim to make room for an admission.
type EvictReason int

// EvictPolicy is the only eviction reason in this module: see EvictReason.
const EvictPolicy EvictReason = 0

// Metrics exposes per-shard observability hooks. A NoopMetrics
// implementation is provided and used by default; metrics/prom.Adapter
// plugs in a Prometheus-backed implementation.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
}

// NoopMetrics discards every signal. It is the default when no Metrics is
// supplied, matching the teacher's own zero-value-safe design.
type NoopMetrics struct{}

func (NoopMetrics) Hit()              {}
func (NoopMetrics) Miss()             {}
func (NoopMetrics) Evict(EvictReason) {}
func (NoopMetrics) Size(int)          {}

// LatencyRecorder is implemented by metrics backends that also want to
// observe end-to-end request latency, i.e. completion_timestamp -
// request_timestamp. It is fed by simulator.Observe, which cmd/simulate and
// cmd/cdn-client call on their completed RequestResult lists; the per-shard
// policies never consult it.
type LatencyRecorder interface {
	// DelayedHit records an arrival that coalesced onto an already in-flight
	// miss for the same key (the phenomenon this whole module studies).
	DelayedHit()
	// ObserveLatency records one request's completion_timestamp -
	// request_timestamp, in nanoseconds.
	ObserveLatency(latency simtime.TimeUnit)
}

// NoopLatencyRecorder discards every signal.
type NoopLatencyRecorder struct{}

func (NoopLatencyRecorder) DelayedHit()                     {}
func (NoopLatencyRecorder) ObserveLatency(simtime.TimeUnit) {}
