// Package driver runs the tern pipeline over a set of files: load, parse,
// index, then resolve every file in parallel against a shared Engine.
package driver

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"tern/internal/ast"
	"tern/internal/diag"
	"tern/internal/observ"
	"tern/internal/parser"
	"tern/internal/prelude"
	"tern/internal/sema"
	"tern/internal/source"
	"tern/internal/storage"
	"tern/internal/symbols"
	"tern/internal/trace"
)

// Options configures a Check run.
type Options struct {
	// Jobs caps the number of parallel tasks; <= 0 means GOMAXPROCS.
	Jobs int
	// Checkers is the checker set; nil means all builtin ones.
	Checkers *sema.Checkers
	// Cache, when not nil, keeps run results by input hash.
	Cache *DiskCache
	// BaseDir is the base for relative paths in the FileSet.
	BaseDir string
	// Progress receives per-file events (for the TUI).
	Progress ProgressSink
	// Heartbeat > 0 turns on periodic trace events with memo counters.
	Heartbeat time.Duration
}

// Source is an in-memory file.
type Source struct {
	Path    string
	Content []byte
}

// FileResult is the outcome for one user file.
type FileResult struct {
	Path   string
	FileID source.FileID
	Bag    *diag.Bag
	Calls  []sema.CallRecord
}

// Result of a Check run. Index and Engine are nil when the result came from
// the cache.
type Result struct {
	FileSet *source.FileSet
	Index   *symbols.Index
	Engine  *sema.Engine
	Files   []FileResult
	// Prelude holds diagnostics of the builtin package (usually empty).
	Prelude *diag.Bag
	Timing  observ.Report
	Cached  bool
}

// Check loads paths from disk and analyzes them together.
func Check(ctx context.Context, paths []string, opts Options) (*Result, error) {
	fs := source.NewFileSetWithBase(opts.BaseDir)
	preludeID := fs.AddVirtual(prelude.FileName, prelude.Source())
	ids := make([]source.FileID, 0, len(paths))
	for _, p := range paths {
		id, err := fs.Load(p)
		if err != nil {
			return nil, fmt.Errorf("driver: %w", err)
		}
		ids = append(ids, id)
	}
	return run(ctx, fs, preludeID, ids, opts)
}

// CheckSources analyzes in-memory files; used by tests and stdin mode.
func CheckSources(ctx context.Context, srcs []Source, opts Options) (*Result, error) {
	fs := source.NewFileSetWithBase(opts.BaseDir)
	preludeID := fs.AddVirtual(prelude.FileName, prelude.Source())
	ids := make([]source.FileID, 0, len(srcs))
	for _, s := range srcs {
		ids = append(ids, fs.AddVirtual(s.Path, s.Content))
	}
	return run(ctx, fs, preludeID, ids, opts)
}

func run(ctx context.Context, fs *source.FileSet, preludeID source.FileID, ids []source.FileID, opts Options) (*Result, error) {
	timer := observ.NewTimer()
	sp, ctx := trace.StartSpan(ctx, trace.ScopeDriver, "driver.check")
	defer sp.End("")
	sp.WithExtra("files", strconv.Itoa(len(ids)))

	res := &Result{FileSet: fs, Prelude: diag.NewBag(0)}
	for _, id := range ids {
		emit(opts.Progress, Event{File: fs.Get(id).Path, Stage: StageParse, Status: StatusQueued})
	}

	key := cacheKey(fs, opts.Checkers, append([]source.FileID{preludeID}, ids...))
	if opts.Cache != nil {
		idx := timer.Begin("cache")
		var payload CachePayload
		hit, err := opts.Cache.Get(key, &payload)
		switch {
		case err != nil:
			// a broken cache is not fatal, just recompute
			timer.End(idx, "read error: "+err.Error())
		case hit && payload.matches(fs, ids):
			timer.End(idx, "hit")
			timer.Count("cache.hits", 1)
			res.Files = payload.restore(ids)
			res.Cached = true
			for _, fr := range res.Files {
				emit(opts.Progress, Event{File: fr.Path, Stage: StageResolve, Status: doneStatus(fr.Bag)})
			}
			res.Timing = timer.Report()
			return res, nil
		default:
			timer.End(idx, "miss")
		}
	}

	bags := make(map[source.FileID]*diag.Bag, len(ids)+1)
	bags[preludeID] = res.Prelude
	for _, id := range ids {
		bags[id] = diag.NewBag(0)
	}
	route := diag.NewDedupReporter(routeReporter{bags: bags, fallback: res.Prelude})

	// parse + index run sequentially: Builder and Index are not thread-safe
	idx := timer.Begin("parse")
	psp, _ := trace.StartSpan(ctx, trace.ScopePass, "parse")
	size := 0
	for _, id := range ids {
		size += len(fs.Get(id).Content)
	}
	b := ast.NewBuilder(ast.HintsForSource(len(ids)+1, size), nil)
	ix := symbols.NewIndex(b, route)
	astIDs := make(map[source.FileID]ast.FileID, len(ids)+1)
	for _, id := range append([]source.FileID{preludeID}, ids...) {
		if err := ctx.Err(); err != nil {
			psp.End("cancelled")
			return nil, err
		}
		emit(opts.Progress, Event{File: fs.Get(id).Path, Stage: StageParse, Status: StatusWorking})
		pr := parser.ParseFile(fs.Get(id), b, parser.Options{Reporter: route})
		astIDs[id] = pr.File
	}
	psp.End("")
	timer.End(idx, strconv.Itoa(len(ids))+" files")

	idx = timer.Begin("index")
	isp, _ := trace.StartSpan(ctx, trace.ScopePass, "index")
	emit(opts.Progress, Event{Stage: StageIndex, Status: StatusWorking})
	for _, id := range append([]source.FileID{preludeID}, ids...) {
		ix.AddFile(astIDs[id], id)
	}
	ix.Finish(prelude.Package)
	isp.End("")
	timer.End(idx, "")

	store := storage.New()
	eng := sema.NewEngine(ix, sema.Options{Checkers: opts.Checkers, Storage: store})
	res.Index, res.Engine = ix, eng

	hb := trace.StartHeartbeat(trace.FromContext(ctx), opts.Heartbeat, memoProbe(store))
	defer hb.Stop()

	idx = timer.Begin("resolve")
	files, err := resolveParallel(ctx, eng, fs, ids, astIDs, bags, opts)
	timer.End(idx, "")
	if err != nil {
		return nil, err
	}
	res.Files = files

	st := store.Stats()
	timer.Count("memo.computed", st.Computed.Load())
	timer.Count("memo.hits", st.Hits.Load())
	timer.Count("memo.recursive", st.Recursive.Load())
	timer.Count("memo.waits", st.Waits.Load())
	timer.Count("diag.duplicates", int64(route.Suppressed()))

	if opts.Cache != nil {
		idx = timer.Begin("cache.store")
		err := opts.Cache.Put(key, newPayload(fs, res.Files))
		if err != nil {
			timer.End(idx, "write error: "+err.Error())
		} else {
			timer.End(idx, "")
		}
	}
	res.Timing = timer.Report()
	return res, nil
}

// resolveParallel runs CheckFile with one task per file. Results are stored
// by index, so no mutex is needed.
func resolveParallel(ctx context.Context, eng *sema.Engine, fs *source.FileSet, ids []source.FileID, astIDs map[source.FileID]ast.FileID, bags map[source.FileID]*diag.Bag, opts Options) ([]FileResult, error) {
	out := make([]FileResult, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(ids)))
	for i, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := fs.Get(id).Path
			started := time.Now()
			emit(opts.Progress, Event{File: path, Stage: StageResolve, Status: StatusWorking})
			bag := bags[id]
			fr := eng.CheckFile(storage.WithTask(gctx), astIDs[id], diag.BagReporter{Bag: bag})
			bag.Dedup()
			bag.Sort()
			emit(opts.Progress, Event{File: path, Stage: StageResolve, Status: doneStatus(bag), Elapsed: time.Since(started)})
			out[i] = FileResult{
				Path:   path,
				FileID: id,
				Bag:    bag,
				Calls:  eng.Records(fs, fr),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// memoProbe reports memo counters in heartbeat events.
func memoProbe(store *storage.Storage) trace.Probe {
	return func() map[string]string {
		st := store.Stats()
		return map[string]string{
			"memo.computed":  strconv.FormatInt(st.Computed.Load(), 10),
			"memo.hits":      strconv.FormatInt(st.Hits.Load(), 10),
			"memo.recursive": strconv.FormatInt(st.Recursive.Load(), 10),
			"memo.waits":     strconv.FormatInt(st.Waits.Load(), 10),
		}
	}
}

func doneStatus(bag *diag.Bag) Status {
	if bag.HasErrors() {
		return StatusError
	}
	return StatusDone
}

// Diagnostics merges the per-file bags into one sorted bag limited to max.
func (r *Result) Diagnostics(max int) *diag.Bag {
	all := diag.NewBag(0)
	all.Merge(r.Prelude)
	for i := range r.Files {
		all.Merge(r.Files[i].Bag)
	}
	all.Sort()
	return all.Limit(max)
}

// Calls concatenates call records of all files in input order.
func (r *Result) Calls() []sema.CallRecord {
	var out []sema.CallRecord
	for i := range r.Files {
		out = append(out, r.Files[i].Calls...)
	}
	return out
}

// HasErrors reports whether any file has an error diagnostic.
func (r *Result) HasErrors() bool {
	if r.Prelude.HasErrors() {
		return true
	}
	for i := range r.Files {
		if r.Files[i].Bag.HasErrors() {
			return true
		}
	}
	return false
}

// routeReporter sorts parse/index diagnostics into files.
type routeReporter struct {
	bags     map[source.FileID]*diag.Bag
	fallback *diag.Bag
}

func (r routeReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	bag, ok := r.bags[primary.File]
	if !ok {
		bag = r.fallback
	}
	diag.BagReporter{Bag: bag}.Report(code, sev, primary, msg, notes)
}
