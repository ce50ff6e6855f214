package cdn

import (
	"runtime"
	"time"
)

// clock paces the request-sending loop to a fixed inter-request time. It is
// grounded on proj-toy-cdn's Clock: time.Sleep's scheduler granularity is
// too coarse to hit microsecond-level inter-request times, so waiting spins
// on a monotonic reading instead, yielding the processor each iteration.
type clock struct {
	start time.Time
	irt   time.Duration
}

func tick(irt time.Duration) clock {
	return clock{start: time.Now(), irt: irt}
}

// waitUntilNextAvailable busy-waits, yielding between polls, until irt has
// elapsed since the clock was ticked.
func (c clock) waitUntilNextAvailable() {
	for time.Since(c.start) < c.irt {
		runtime.Gosched()
	}
}
