package trace

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestRingCapturesNestedSpans(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	outer, ctx := StartSpan(ctx, ScopePass, "resolve")
	inner, _ := StartSpan(ctx, ScopeNode, "call:map")
	inner.WithExtra("candidates", "2").End("success")
	outer.End("")

	events := ring.Snapshot()
	require.Len(t, events, 4)
	assert.Equal(t, KindSpanBegin, events[0].Kind)
	assert.Equal(t, "call:map", events[1].Name)
	assert.Equal(t, outer.ID(), events[1].ParentID)
	assert.Equal(t, "2", events[2].Extra["candidates"])
	assert.Equal(t, KindSpanEnd, events[3].Kind)
}

func TestLevelFiltersScopes(t *testing.T) {
	ring := NewRingTracer(8, LevelPhase)
	Begin(ring, ScopeNode, "call", 0).End("")
	assert.Empty(t, ring.Snapshot())

	Begin(ring, ScopePass, "index", 0).End("")
	assert.Len(t, ring.Snapshot(), 2)
}

func TestRingWrapsAround(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d"} {
		Point(ring, ScopeNode, name, "", 0)
	}
	events := ring.Snapshot()
	require.Len(t, events, 3)
	assert.Equal(t, "b", events[0].Name)
	assert.Equal(t, "d", events[2].Name)
}

func TestStreamTextIsDeterministic(t *testing.T) {
	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelDebug, FormatText)
	Begin(st, ScopeNode, "call:f", 0).WithExtra("z", "1").WithExtra("a", "2").End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "call:f (ok) {a=2, z=1}")
}

func TestRecordTracerReportsAttributes(t *testing.T) {
	type record struct {
		name  string
		dur   time.Duration
		attrs []attribute.KeyValue
	}
	var got []record
	rt := NewRecordTracer(LevelDebug, func(name string, dur time.Duration, attrs []attribute.KeyValue) {
		got = append(got, record{name, dur, attrs})
	})

	Begin(rt, ScopeNode, "call", 0).WithExtra("tasks", "3").WithExtra("callee", "map").End("success")

	require.Len(t, got, 1)
	assert.Equal(t, "node.call", got[0].name)
	assert.GreaterOrEqual(t, got[0].dur, time.Duration(0))
	assert.Contains(t, got[0].attrs, attribute.String("detail", "success"))
	assert.Contains(t, got[0].attrs, attribute.String("callee", "map"))
	assert.Contains(t, got[0].attrs, attribute.Int64("tasks", 3))
}

func TestNewFromConfig(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	require.NoError(t, err)
	assert.False(t, tr.Enabled())

	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelDebug, Mode: ModeBoth, Output: &buf})
	require.NoError(t, err)
	Point(tr, ScopeDriver, "start", "", 0)
	assert.NotZero(t, buf.Len())

	_, err = ParseMode("bogus")
	assert.Error(t, err)
	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestRingTail(t *testing.T) {
	ring := NewRingTracer(4, LevelDebug)
	assert.Empty(t, ring.Tail(3))
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		Point(ring, ScopeNode, name, "", 0)
	}
	tail := ring.Tail(2)
	require.Len(t, tail, 2)
	assert.Equal(t, "e", tail[0].Name)
	assert.Equal(t, "f", tail[1].Name)
	assert.Len(t, ring.Tail(100), 4)

	var buf bytes.Buffer
	require.NoError(t, ring.Dump(&buf, FormatText, 1))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "f")
}

func TestParseLevelCaseInsensitive(t *testing.T) {
	for i, name := range LevelNames() {
		l, err := ParseLevel(" " + strings.ToUpper(name))
		require.NoError(t, err)
		assert.Equal(t, Level(i), l)
		assert.Equal(t, name, l.String())
	}
	assert.False(t, LevelError.ShouldEmit(ScopeDriver))
	assert.True(t, LevelDetail.ShouldEmit(ScopeModule))
	assert.False(t, LevelDetail.ShouldEmit(ScopeNode))
	assert.False(t, Level(42).ShouldEmit(ScopeDriver))
}

func TestMultiTracerFlattens(t *testing.T) {
	a := NewRingTracer(8, LevelDebug)
	b := NewRingTracer(8, LevelDebug)
	inner := NewMultiTracer(LevelDebug, a, nil, Nop)
	outer := NewMultiTracer(LevelDebug, inner, b)
	require.Len(t, outer.tracers, 2)
	assert.True(t, outer.Enabled())

	Point(outer, ScopePass, "resolve", "", 0)
	assert.Len(t, a.Snapshot(), 1)
	assert.Len(t, b.Snapshot(), 1)
	require.NoError(t, outer.Flush())
	require.NoError(t, outer.Close())

	assert.False(t, NewMultiTracer(LevelDebug, Nop).Enabled())
}

func TestHeartbeatCarriesProbe(t *testing.T) {
	assert.Nil(t, StartHeartbeat(Nop, time.Millisecond, nil))
	var nilHB *Heartbeat
	nilHB.Stop()

	ring := NewRingTracer(64, LevelPhase)
	hb := StartHeartbeat(ring, time.Millisecond, func() map[string]string {
		return map[string]string{"memo.waits": "0"}
	})
	require.NotNil(t, hb)
	require.Eventually(t, func() bool { return len(ring.Snapshot()) >= 2 }, time.Second, time.Millisecond)
	hb.Stop()
	hb.Stop()

	events := ring.Snapshot()
	assert.Equal(t, KindHeartbeat, events[0].Kind)
	assert.Equal(t, "#1", events[0].Detail)
	assert.Equal(t, "0", events[0].Extra["memo.waits"])
}

func TestStreamOwnsOnlyOpenedFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.ndjson")
	tr, err := New(Config{Level: LevelPhase, Mode: ModeStream, OutputPath: path})
	require.NoError(t, err)
	Point(tr, ScopePass, "resolve", "", 0)
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name":"resolve"`)

	var buf bytes.Buffer
	st := NewStreamTracer(&buf, LevelPhase, FormatText)
	require.NoError(t, st.Close())
	Point(st, ScopePass, "after-close", "", 0)
	assert.Contains(t, buf.String(), "after-close")
}

func TestTaskTagPropagates(t *testing.T) {
	ring := NewRingTracer(16, LevelDebug)
	ctx := WithTask(WithTracer(context.Background(), ring), 7)
	assert.Equal(t, uint64(7), TaskOf(ctx))
	assert.Zero(t, TaskOf(context.Background()))

	sp, inner := StartSpan(ctx, ScopeModule, "sema.file")
	PointCtx(inner, ScopeNode, "memo.recursive", "function[3]")
	sp.End("")

	events := ring.Snapshot()
	require.Len(t, events, 3)
	for _, ev := range events {
		assert.Equal(t, uint64(7), ev.Task, ev.Name)
	}
	assert.Equal(t, sp.ID(), events[1].ParentID)
	assert.Contains(t, string(FormatEvent(&events[1], FormatNDJSON)), `"task":7`)
}

func TestDisabledSpanIsInert(t *testing.T) {
	sp, ctx := StartSpan(context.Background(), ScopeDriver, "driver.check")
	assert.Zero(t, sp.ID())
	assert.Same(t, sp, sp.WithExtra("files", "2"))
	assert.Zero(t, sp.End("done"))
	assert.Zero(t, CurrentSpan(ctx).SpanID)
}

func TestTextFormatMarksTaskAndKind(t *testing.T) {
	ev := &Event{Seq: 3, Kind: KindPoint, Task: 9, ParentID: 1, Name: "memo.recursion", Extra: map[string]string{"b": "2", "a": "1"}}
	assert.Equal(t, "[     3] t9   • memo.recursion {a=1, b=2}\n", string(FormatEvent(ev, FormatText)))
	assert.Equal(t, "unknown", Kind(42).String())
	assert.Equal(t, "node", ScopeNode.String())
}
