// Package simulator implements the discrete-event cache simulator (C6): the
// central algorithm of this module. It replays a lazy trace.Source against
// a cache.Policy, merging external request arrivals with internally
// scheduled fetch completions under the strict ordering rules worked out in
// the original proj-cache-sim/src/simulator.rs, adapted to clamp
// out-of-order arrivals instead of dropping them (see DESIGN.md's
// Open-Question log for why this implementation diverges from the
// original source here).
package simulator

import (
	"fmt"
	"iter"

	"github.com/tsunrise/delayed-hits/cache"
	"github.com/tsunrise/delayed-hits/simtime"
	"github.com/tsunrise/delayed-hits/trace"
)

// RequestResult is one resolved arrival: the request's own timestamp and
// the timestamp at which it was satisfied. completion_timestamp >=
// request_timestamp always; equality holds iff the request was a hit.
type RequestResult[K comparable] struct {
	Key                 K
	RequestTimestamp    simtime.TimeUnit
	CompletionTimestamp simtime.TimeUnit
}

// eventKind distinguishes the two merged event sources the loop consumes.
type eventKind int

const (
	eventRequest eventKind = iota
	eventCompletion
	eventEnd
)

type event[K comparable] struct {
	kind      eventKind
	key       K
	timestamp simtime.TimeUnit
}

// completionEntry is one pending fetch: the key it is for and the
// timestamp it will complete at.
type completionEntry[K comparable] struct {
	key       K
	timestamp simtime.TimeUnit
}

// Run replays requests against cache, a policy instance (usually a
// cache.Sharded dispatcher), with a fixed missLatency added to every
// first-miss of a key. It returns one RequestResult per input arrival.
//
// Run is a pure function of its inputs: the simulator is single-threaded
// and cooperative, with no suspension or cancellation (spec §5).
func Run[K comparable](c cache.Policy[K, struct{}], requests trace.Source[K], missLatency simtime.TimeUnit) []RequestResult[K] {
	next, stop := iter.Pull(iter.Seq[trace.Event[K]](requests))
	defer stop()

	inFlight := make(map[K][]simtime.TimeUnit)
	var completions []completionEntry[K] // FIFO; completion times are non-decreasing

	var results []RequestResult[K]
	var lastRequestTimestamp simtime.TimeUnit

	pendingArrival, havePendingArrival := next()

	for {
		ev := nextEvent(&pendingArrival, &havePendingArrival, next, completions, &lastRequestTimestamp)
		switch ev.kind {
		case eventEnd:
			return results

		case eventRequest:
			if _, ok := c.Get(ev.key, ev.timestamp); ok {
				results = append(results, RequestResult[K]{
					Key:                 ev.key,
					RequestTimestamp:    ev.timestamp,
					CompletionTimestamp: ev.timestamp,
				})
				continue
			}

			if _, inflight := inFlight[ev.key]; !inflight {
				inFlight[ev.key] = nil
				completions = append(completions, completionEntry[K]{key: ev.key, timestamp: ev.timestamp + missLatency})
			}
			inFlight[ev.key] = append(inFlight[ev.key], ev.timestamp)

		case eventCompletion:
			completions = completions[1:]
			if c.Contains(ev.key) {
				panic(fmt.Sprintf("simulator: key %v resident at its own completion", ev.key))
			}
			waiters, ok := inFlight[ev.key]
			if !ok || len(waiters) == 0 {
				panic(fmt.Sprintf("simulator: completion for key %v with no pending waiters", ev.key))
			}
			delete(inFlight, ev.key)

			c.Write(ev.key, struct{}{}, ev.timestamp)
			for _, reqTS := range waiters {
				results = append(results, RequestResult[K]{
					Key:                 ev.key,
					RequestTimestamp:    reqTS,
					CompletionTimestamp: ev.timestamp,
				})
			}
		}
	}
}

// Observe reports each result's latency to rec: DelayedHit for every
// coalesced (latency > 0) request, and ObserveLatency for every request.
// Results with latency > 0 that share a key and completion timestamp were
// served by one fetch; the first of them counts as the fetch's own miss and
// every further one as a delayed hit. Run itself takes no recorder, since
// not every caller wants one; callers that do (cmd/simulate,
// cmd/cdn-client) call Observe on the results afterward.
func Observe[K comparable](results []RequestResult[K], rec cache.LatencyRecorder) {
	type fetch struct {
		key        K
		completion simtime.TimeUnit
	}
	seen := make(map[fetch]bool)
	for _, r := range results {
		latency := r.CompletionTimestamp - r.RequestTimestamp
		if latency > 0 {
			f := fetch{key: r.Key, completion: r.CompletionTimestamp}
			if seen[f] {
				rec.DelayedHit()
			}
			seen[f] = true
		}
		rec.ObserveLatency(latency)
	}
}

// nextEvent implements the ordering rule of spec §4.6: arrival wins ties,
// arrivals are clamped (never dropped) to last_request_timestamp, and the
// completions queue is consumed strictly in FIFO order.
func nextEvent[K comparable](
	pendingArrival *trace.Event[K], haveArrival *bool,
	pull func() (trace.Event[K], bool),
	completions []completionEntry[K],
	lastRequestTimestamp *simtime.TimeUnit,
) event[K] {
	var nextReqTS simtime.TimeUnit
	haveReq := *haveArrival
	if haveReq {
		nextReqTS = pendingArrival.Timestamp
		if nextReqTS < *lastRequestTimestamp {
			nextReqTS = *lastRequestTimestamp
		}
	}

	haveCompletion := len(completions) > 0
	var comTS simtime.TimeUnit
	if haveCompletion {
		comTS = completions[0].timestamp
	}

	chooseRequest := (haveReq && !haveCompletion) || (haveReq && haveCompletion && nextReqTS <= comTS)

	if chooseRequest {
		key := pendingArrival.Key
		rawTS := pendingArrival.Timestamp
		*lastRequestTimestamp = rawTS
		*pendingArrival, *haveArrival = pull()
		return event[K]{kind: eventRequest, key: key, timestamp: nextReqTS}
	}

	if haveCompletion {
		return event[K]{kind: eventCompletion, key: completions[0].key, timestamp: comTS}
	}

	return event[K]{kind: eventEnd}
}
