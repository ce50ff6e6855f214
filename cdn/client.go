package cdn

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tsunrise/delayed-hits/cache"
	"github.com/tsunrise/delayed-hits/internal/util"
	"github.com/tsunrise/delayed-hits/simtime"
	"github.com/tsunrise/delayed-hits/simulator"
	"github.com/tsunrise/delayed-hits/trace"
)

// progress is the pair of hot counters the sender and proxy goroutines bump
// on every request/response; the completion loop polls them for periodic
// logging. The two fields are padded to separate cache lines since they are
// written concurrently by different goroutines (the teacher's
// internal/util padding types, otherwise unused by this module's
// single-threaded simulator core).
type progress struct {
	sent     util.PaddedAtomicInt64
	received util.PaddedAtomicInt64
}

// localState is the mutex-protected state shared by the sender and
// completion goroutines: the cache itself, and the per-key list of
// request timestamps still awaiting a completion. Grounded on
// proj-toy-cdn's LocalState<C>, re-expressed as a plain mutex instead of
// Arc<Mutex<...>> since Go shares memory across goroutines by default.
type localState struct {
	mu       sync.Mutex
	cache    cache.Policy[uint64, struct{}]
	inFlight map[uint64][]simtime.TimeUnit
}

// RunExperiment replays requests against the origin reachable over conns,
// pacing sends to one every irt and coalescing concurrent misses for the
// same key exactly as package simulator does in-process. The first warmup
// requests are replayed locally against pol (via package simulator, with
// missLatencyWarmup as the miss cost) to prime the cache before any
// request reaches the wire; they are not sent to the origin and do not
// appear in the returned results.
//
// Three goroutines cooperate, coordinated by an errgroup.Group exactly as
// the teacher's own singleflight test coordinates concurrent work: a
// sender goroutine that paces and dispatches requests, one proxy goroutine
// per connection that forwards origin responses to the completion queue,
// and the completion loop (run on the calling goroutine) that updates the
// cache and assembles results.
func RunExperiment(
	pol cache.Policy[uint64, struct{}],
	requests []uint64,
	warmup int,
	missLatencyWarmup simtime.TimeUnit,
	irt time.Duration,
	conns []net.Conn,
) ([]simulator.RequestResult[uint64], error) {
	if warmup > len(requests) {
		warmup = len(requests)
	}
	warmupRequests, realRequests := requests[:warmup], requests[warmup:]

	lastEventTimestamp := runWarmup(pol, warmupRequests, irt, missLatencyWarmup)

	state := &localState{cache: pol, inFlight: make(map[uint64][]simtime.TimeUnit)}
	startOfTime := time.Now().Add(-lastEventTimestamp.Duration() - irt)

	completions := newCompletionQueue[uint64]()
	var nextConn int64
	var prog progress

	var g errgroup.Group
	g.Go(func() error {
		return sendLoop(state, realRequests, irt, startOfTime, conns, &nextConn, completions, &prog)
	})
	for _, conn := range conns {
		conn := conn
		g.Go(func() error { return proxyLoop(conn, completions, &prog) })
	}

	results := completionLoop(state, len(realRequests), startOfTime, completions, &prog)

	for _, conn := range conns {
		conn.Close()
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runWarmup replays warmupRequests in-process, spaced irt apart, to prime
// pol before the timed portion of the experiment begins. It returns the
// latest completion timestamp observed, so the real experiment's clock can
// start counting from a little past where the warmup left off.
func runWarmup(pol cache.Policy[uint64, struct{}], warmupRequests []uint64, irt time.Duration, missLatency simtime.TimeUnit) simtime.TimeUnit {
	if len(warmupRequests) == 0 {
		return 0
	}
	irtUnit := simtime.FromDuration(irt)
	events := make([]trace.Event[uint64], len(warmupRequests))
	for i, key := range warmupRequests {
		events[i] = trace.Event[uint64]{Key: key, Timestamp: simtime.TimeUnit(i) * irtUnit}
	}
	results := simulator.Run[uint64](pol, trace.FromSlice(events), missLatency)

	var last simtime.TimeUnit
	for _, r := range results {
		if r.CompletionTimestamp > last {
			last = r.CompletionTimestamp
		}
	}
	return last
}

func sendLoop(
	state *localState,
	requests []uint64,
	irt time.Duration,
	startOfTime time.Time,
	conns []net.Conn,
	nextConn *int64,
	completions *completionQueue[uint64],
	prog *progress,
) error {
	for _, key := range requests {
		c := tick(irt)
		timestamp := simtime.Since(startOfTime)

		state.mu.Lock()
		waiters := state.inFlight[key]
		firstRequest := len(waiters) == 0
		state.inFlight[key] = append(waiters, timestamp)
		_, hit := state.cache.Get(key, timestamp)
		state.mu.Unlock()

		switch {
		case hit:
			completions.push(key)
		case firstRequest:
			conn := conns[atomic.AddInt64(nextConn, 1)%int64(len(conns))]
			if err := WriteRequest(conn, key); err != nil {
				return fmt.Errorf("cdn: send request for key %d: %w", key, err)
			}
		}
		prog.sent.Add(1)

		c.waitUntilNextAvailable()
	}
	return nil
}

func proxyLoop(conn net.Conn, completions *completionQueue[uint64], prog *progress) error {
	for {
		resp, err := ReadResponse(conn)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("cdn: read response: %w", err)
		}
		prog.received.Add(1)
		completions.push(resp.Key)
	}
}

func completionLoop(state *localState, want int, startOfTime time.Time, completions *completionQueue[uint64], prog *progress) []simulator.RequestResult[uint64] {
	results := make([]simulator.RequestResult[uint64], 0, want)
	lastProgressLog := time.Now()
	for len(results) < want {
		key, ok := completions.pop()
		if !ok {
			break
		}
		timestamp := simtime.Since(startOfTime)

		state.mu.Lock()
		waiters := state.inFlight[key]
		delete(state.inFlight, key)
		state.cache.Write(key, struct{}{}, timestamp)
		state.mu.Unlock()

		for _, reqTS := range waiters {
			results = append(results, simulator.RequestResult[uint64]{
				Key:                 key,
				RequestTimestamp:    reqTS,
				CompletionTimestamp: timestamp,
			})
		}

		if time.Since(lastProgressLog) > 3*time.Second {
			log.Printf("cdn: %d/%d requests fulfilled (sent=%d received=%d)",
				len(results), want, prog.sent.Load(), prog.received.Load())
			lastProgressLog = time.Now()
		}
	}
	completions.close()
	return results
}

