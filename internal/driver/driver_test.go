package driver

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"tern/internal/diag"
	"tern/internal/sema"
	"tern/internal/storage"
	"tern/internal/trace"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var twoFiles = []Source{
	{Path: "a.tn", Content: []byte("package app\nfun twice(x: Int): Int = x.plus(x)\n")},
	{Path: "b.tn", Content: []byte("package app\nfun main() {\n  val y = twice(2)\n  nope(y)\n}\n")},
}

func TestCheckSourcesAcrossFiles(t *testing.T) {
	res, err := CheckSources(context.Background(), twoFiles, Options{Jobs: 2})
	require.NoError(t, err)
	require.False(t, res.Cached)
	require.Len(t, res.Files, 2)
	require.Equal(t, "a.tn", res.Files[0].Path)
	require.Zero(t, res.Files[0].Bag.Len())

	b := res.Files[1]
	require.Equal(t, 1, b.Bag.Count(diag.SemaUnresolvedReference))
	var twice *sema.CallRecord
	for i := range b.Calls {
		if b.Calls[i].Name == "twice" {
			twice = &b.Calls[i]
		}
	}
	require.NotNil(t, twice)
	require.Equal(t, "app.twice", twice.Callee)
	require.Equal(t, "Int", twice.Result)
	require.Equal(t, uint32(3), twice.Line)

	require.True(t, res.HasErrors())
	require.Equal(t, 1, res.Diagnostics(0).Len())
	require.NotEmpty(t, res.Calls())

	var phases []string
	for _, p := range res.Timing.Phases {
		phases = append(phases, p.Name)
	}
	require.Equal(t, []string{"parse", "index", "resolve"}, phases)
	require.NotEmpty(t, res.Timing.Counters)
}

func TestParseErrorsRoutedToFile(t *testing.T) {
	res, err := CheckSources(context.Background(), []Source{
		{Path: "ok.tn", Content: []byte("package app\nfun f() {}\n")},
		{Path: "bad.tn", Content: []byte("package app\nfun (\n")},
	}, Options{})
	require.NoError(t, err)
	require.Zero(t, res.Files[0].Bag.Len())
	require.True(t, res.Files[1].Bag.HasErrors())
	require.Zero(t, res.Prelude.Len())
}

func TestDiagnosticsLimit(t *testing.T) {
	res, err := CheckSources(context.Background(), []Source{
		{Path: "m.tn", Content: []byte("package app\nfun main() {\n  a()\n  b()\n  c()\n}\n")},
	}, Options{Jobs: 1})
	require.NoError(t, err)
	require.Equal(t, 3, res.Diagnostics(0).Len())
	limited := res.Diagnostics(2)
	require.Equal(t, 2, limited.Len())
	require.Contains(t, limited.Items()[0].Message, "a")
}

func TestCheckerSelection(t *testing.T) {
	src := []Source{{Path: "m.tn", Content: []byte("package app\n@Deprecated(\"x\")\nfun old() {}\nfun main() { old() }\n")}}
	res, err := CheckSources(context.Background(), src, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Files[0].Bag.Count(diag.SemaDeprecatedUsage))

	res, err = CheckSources(context.Background(), src, Options{Checkers: sema.NewCheckers()})
	require.NoError(t, err)
	require.Zero(t, res.Files[0].Bag.Len())
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CheckSources(ctx, twoFiles, Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCheckLoadsFromDiskAndCaches(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, s := range twoFiles {
		p := filepath.Join(dir, s.Path)
		require.NoError(t, os.WriteFile(p, s.Content, 0o600))
		paths = append(paths, p)
	}
	cache, err := OpenDiskCache("tern", filepath.Join(dir, ".cache"))
	require.NoError(t, err)
	opts := Options{Cache: cache, BaseDir: dir}

	first, err := Check(context.Background(), paths, opts)
	require.NoError(t, err)
	require.False(t, first.Cached)

	second, err := Check(context.Background(), paths, opts)
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Nil(t, second.Engine)
	require.Len(t, second.Files, 2)
	for i := range first.Files {
		require.Equal(t, first.Files[i].Path, second.Files[i].Path)
		require.Equal(t, first.Files[i].FileID, second.Files[i].FileID)
		require.Equal(t, first.Files[i].Bag.Len(), second.Files[i].Bag.Len())
		require.Len(t, second.Files[i].Calls, len(first.Files[i].Calls))
	}
	require.Equal(t, first.Diagnostics(0).Items()[0].Primary, second.Diagnostics(0).Items()[0].Primary)

	// another checker set means another key
	third, err := Check(context.Background(), paths, Options{Cache: cache, BaseDir: dir, Checkers: sema.NewCheckers()})
	require.NoError(t, err)
	require.False(t, third.Cached)

	// a changed file misses
	require.NoError(t, os.WriteFile(paths[0], []byte("package app\nfun twice(x: Int): Int = x\n"), 0o600))
	fourth, err := Check(context.Background(), paths, opts)
	require.NoError(t, err)
	require.False(t, fourth.Cached)

	require.NoError(t, cache.DropAll())
	fifth, err := Check(context.Background(), paths, opts)
	require.NoError(t, err)
	require.False(t, fifth.Cached)
}

func TestCheckMissingFile(t *testing.T) {
	_, err := Check(context.Background(), []string{filepath.Join(t.TempDir(), "missing.tn")}, Options{})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *DiskCache
	var p CachePayload
	hit, err := c.Get([32]byte{}, &p)
	require.NoError(t, err)
	require.False(t, hit)
	require.NoError(t, c.Put([32]byte{}, &p))
	require.NoError(t, c.DropAll())
}

type recordSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordSink) OnEvent(e Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

func TestProgressEvents(t *testing.T) {
	sink := &recordSink{}
	_, err := CheckSources(context.Background(), twoFiles, Options{Jobs: 2, Progress: sink})
	require.NoError(t, err)

	last := make(map[string]Status)
	for _, e := range sink.events {
		if e.File != "" {
			last[e.File] = e.Status
		}
	}
	require.Equal(t, StatusDone, last["a.tn"])
	require.Equal(t, StatusError, last["b.tn"])
	require.Equal(t, StatusQueued, sink.events[0].Status)
}

func TestChannelSink(t *testing.T) {
	ch := make(chan Event, 1)
	ChannelSink{Ch: ch}.OnEvent(Event{File: "x.tn", Status: StatusDone})
	require.Equal(t, "x.tn", (<-ch).File)
	ChannelSink{}.OnEvent(Event{})
}

func TestCountersAndHeartbeatOption(t *testing.T) {
	ring := trace.NewRingTracer(256, trace.LevelPhase)
	ctx := trace.WithTracer(context.Background(), ring)
	res, err := CheckSources(ctx, twoFiles, Options{Heartbeat: time.Hour})
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, c := range res.Timing.Counters {
		names[c.Name] = true
	}
	require.True(t, names["memo.computed"])
	require.True(t, names["diag.duplicates"])

	var spans []string
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanBegin {
			spans = append(spans, ev.Name)
		}
	}
	require.Contains(t, spans, "driver.check")
	require.Contains(t, spans, "parse")
}

func TestMemoProbe(t *testing.T) {
	store := storage.New()
	store.Stats().Waits.Add(3)
	got := memoProbe(store)()
	require.Equal(t, "3", got["memo.waits"])
	require.Equal(t, "0", got["memo.computed"])
	require.Len(t, got, 4)
}
