// Package trace supplies the lazy `(key, timestamp)` sequences the
// simulator and the CDN client replay (spec §6's "trace intake to the
// core"). It is deliberately thin: real trace parsing (pcap, CDN logs,
// block-IO traces, key-value store formats) is an external collaborator's
// job, out of scope for the core. What lives here is the minimal glue every
// consumer needs regardless of source format: the event type itself, a
// lazy iter.Seq-based source alias, a synthetic Zipf-driven generator for
// benchmarking, and a tiny CSV loader for feeding a real trace file through
// the same interface.
package trace

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"math/rand"
	"os"
	"strconv"

	"github.com/tsunrise/delayed-hits/simtime"
)

// Event is one input arrival: a key observed at a timestamp. The core
// simulator treats Key generically (any comparable type the boundary
// supplies: an opaque 64-bit id, a flow tuple, a block identifier).
type Event[K comparable] struct {
	Key       K
	Timestamp simtime.TimeUnit
}

// Source is a lazy, potentially unbounded ordered sequence of events. It is
// exactly a Go 1.23 iter.Seq: range-over-func gives every consumer a
// for-range loop, while simulator.Run additionally needs to peek one event
// ahead without consuming it, which it gets via iter.Pull.
type Source[K comparable] iter.Seq[Event[K]]

// FromSlice adapts an in-memory slice of events to a Source, useful for
// tests and small worked examples.
func FromSlice[K comparable](events []Event[K]) Source[K] {
	return func(yield func(Event[K]) bool) {
		for _, e := range events {
			if !yield(e) {
				return
			}
		}
	}
}

// Synthetic generates a Source of n events over a Zipf-distributed keyspace
// of the given size, with inter-request gaps drawn from an exponential
// distribution with the given mean (so the aggregate arrival process is a
// Poisson process, a standard choice for synthetic cache benchmarking).
// zipfS/zipfV follow rand.NewZipf's parameterization (s > 1 controls skew).
//
// Grounded on the teacher's cmd/bench use of math/rand's Zipf generator for
// workload synthesis; adapted here to emit a monotone timestamp per key
// pull instead of driving concurrent goroutine load directly.
func Synthetic(n int, keyspace uint64, zipfS, zipfV float64, meanIRT simtime.TimeUnit, seed int64) Source[uint64] {
	return func(yield func(Event[uint64]) bool) {
		if n <= 0 || keyspace == 0 {
			return
		}
		r := rand.New(rand.NewSource(seed))
		zipf := rand.NewZipf(r, zipfS, zipfV, keyspace-1)

		var t simtime.TimeUnit
		for i := 0; i < n; i++ {
			if i > 0 {
				gap := simtime.TimeUnit(r.ExpFloat64() * float64(meanIRT))
				t += gap
			}
			if !yield(Event[uint64]{Key: zipf.Uint64(), Timestamp: t}) {
				return
			}
		}
	}
}

// FromCSV reads a trace of "key,timestamp_ns" lines (no header) and returns
// a lazily-decoded Source. Key is parsed as an unsigned 64-bit opaque
// identifier; callers needing a richer key type should write their own
// loader and reuse only the Event/Source shapes.
func FromCSV(path string) (Source[uint64], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}

	return func(yield func(Event[uint64]) bool) {
		r := csv.NewReader(bufio.NewReader(bytes.NewReader(data)))
		r.FieldsPerRecord = 2
		for {
			rec, err := r.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				return
			}
			key, kerr := strconv.ParseUint(rec[0], 10, 64)
			ts, terr := strconv.ParseUint(rec[1], 10, 64)
			if kerr != nil || terr != nil {
				continue
			}
			if !yield(Event[uint64]{Key: key, Timestamp: simtime.TimeUnit(ts)}) {
				return
			}
		}
	}, nil
}
