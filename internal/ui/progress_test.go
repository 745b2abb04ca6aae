package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tern/internal/driver"
)

func TestProgressModelAppliesEvents(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("tern check", []string{"a.tn", "b.tn"}, events).(*progressModel)

	m.Update(eventMsg{File: "a.tn", Stage: driver.StageParse, Status: driver.StatusWorking})
	require.Equal(t, "parsing", m.rows[0].label())
	require.Equal(t, "queued", m.rows[1].label())
	require.InDelta(t, 0.1, m.percent(), 1e-9)

	m.Update(eventMsg{File: "a.tn", Stage: driver.StageResolve, Status: driver.StatusDone, Elapsed: 2 * time.Millisecond})
	m.Update(eventMsg{File: "b.tn", Stage: driver.StageResolve, Status: driver.StatusError})
	// the prelude is not listed, so the event is ignored
	m.Update(eventMsg{File: "<prelude>/tern.tn", Stage: driver.StageParse, Status: driver.StatusWorking})
	m.Update(eventMsg{Stage: driver.StageIndex, Status: driver.StatusWorking})
	require.InDelta(t, 1.0, m.percent(), 1e-9)
	require.Equal(t, driver.StageIndex, m.runStage)

	finished, failed := m.tally()
	require.Equal(t, 2, finished)
	require.Equal(t, 1, failed)

	view := m.View()
	require.Contains(t, view, "tern check (indexing)")
	require.Contains(t, view, "2/2 files, 1 with errors")
	require.Contains(t, view, "a.tn 2.0ms")
	require.Contains(t, view, "error")

	_, cmd := m.Update(doneMsg{})
	require.NotNil(t, cmd)
	require.True(t, m.done)
	require.Contains(t, m.View(), "done: tern check")
	require.NotContains(t, m.View(), "(indexing)")
}

func TestProgressModelEmpty(t *testing.T) {
	m := NewProgressModel("tern check", nil, nil).(*progressModel)
	require.Zero(t, m.percent())
	require.Empty(t, m.View())
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	require.Equal(t, "ab", truncate("abcdef", 2))
}
