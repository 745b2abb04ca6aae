package observ

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTimerPhasesAndCounters(t *testing.T) {
	tm := NewTimer()
	i := tm.Begin("parse")
	tm.End(i, "3 files")
	j := tm.Begin("resolve")
	tm.End(j, "")
	tm.End(42, "ignored")

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() { tm.Count("memo.hits", 2) })
	}
	wg.Wait()
	tm.Count("memo.computed", 1)

	rep := tm.Report()
	require.Len(t, rep.Phases, 2)
	require.Equal(t, "parse", rep.Phases[0].Name)
	require.Equal(t, "3 files", rep.Phases[0].Note)
	require.Equal(t, []CounterReport{{"memo.computed", 1}, {"memo.hits", 16}}, rep.Counters)
	require.EqualValues(t, 16, rep.Counter("memo.hits"))
	require.Zero(t, rep.Counter("cache.hits"))

	sum := rep.String()
	require.Contains(t, sum, "parse")
	require.Contains(t, sum, "// 3 files")
	require.Contains(t, sum, "memo.computed        1\n")
}

func TestNilTimerIsNoop(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	tm.Count("y", 1)
	require.Equal(t, Report{}, tm.Report())
}
