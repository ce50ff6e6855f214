package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsunrise/delayed-hits/simtime"
	"github.com/tsunrise/delayed-hits/simulator"
	"github.com/tsunrise/delayed-hits/stats"
)

func TestSummarize_ComputesTotalsAndAverage(t *testing.T) {
	t.Parallel()

	results := []simulator.RequestResult[string]{
		{Key: "A", RequestTimestamp: 5, CompletionTimestamp: 10},
		{Key: "B", RequestTimestamp: 0, CompletionTimestamp: 0},
		{Key: "C", RequestTimestamp: 2, CompletionTimestamp: 12},
	}

	s := stats.Summarize(results)

	require.EqualValues(t, 3, s.Count)
	assert.EqualValues(t, 15, s.TotalLatency)
	assert.InDelta(t, 5.0, s.AverageLatency, 1e-9)

	want := []simtime.TimeUnit{0, 2, 5}
	require.Len(t, s.LatenciesByTimestampSorted, len(want))
	for i, ts := range want {
		assert.Equalf(t, ts, s.LatenciesByTimestampSorted[i].RequestTimestamp, "index %d", i)
	}
}

func TestSummarize_EmptyInput(t *testing.T) {
	t.Parallel()

	s := stats.Summarize[string](nil)
	assert.Zero(t, s.Count)
	assert.Zero(t, s.TotalLatency)
	assert.Zero(t, s.AverageLatency)
}
