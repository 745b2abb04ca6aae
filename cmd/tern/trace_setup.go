package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"tern/internal/project"
	"tern/internal/trace"
)

// panicRing is a ring buffer dumped on panic (ring and both modes).
var panicRing *trace.RingTracer

// panicTail: how many recent events to print on panic.
const panicTail = 256

// setupTracing initializes the tracer from the [trace] settings and attaches
// it to the command context. With --timings, finished spans are also
// aggregated per operation and printed by printSpanStats.
func setupTracing(cmd *cobra.Command, cfg *project.Config) (func(), error) {
	level, err := trace.ParseLevel(cfg.Trace.Level)
	if err != nil {
		return nil, err
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}
	mode, err := trace.ParseMode(cfg.Trace.Mode)
	if err != nil {
		return nil, err
	}
	timings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}

	var tracers []trace.Tracer
	if mode == trace.ModeStream || mode == trace.ModeBoth {
		stream, err := trace.New(trace.Config{Level: level, Mode: trace.ModeStream, OutputPath: cfg.Trace.Output})
		if err != nil {
			return nil, fmt.Errorf("failed to create tracer: %w", err)
		}
		tracers = append(tracers, stream)
	}
	if mode == trace.ModeRing || mode == trace.ModeBoth {
		panicRing = trace.NewRingTracer(4096, level)
		tracers = append(tracers, panicRing)
	}
	stats := &spanStats{ops: make(map[string]*opStat)}
	if timings {
		tracers = append(tracers, trace.NewRecordTracer(level, stats.record))
	}
	tracer := trace.Tracer(trace.NewMultiTracer(level, tracers...))
	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	out := cmd.ErrOrStderr()
	return func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(out, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(out, "trace: close error: %v\n", err)
		}
		if timings {
			stats.print(out)
		}
	}, nil
}

// dumpTraceOnPanic writes the ring buffer to w and re-panics.
func dumpTraceOnPanic(w io.Writer) {
	r := recover()
	if r == nil {
		return
	}
	if panicRing != nil {
		fmt.Fprintln(w, "tern: panic, last trace events:")
		_ = panicRing.Dump(w, trace.FormatText, panicTail)
	}
	panic(r)
}

type opStat struct {
	count int
	total time.Duration
	max   time.Duration
	calls int64
}

// spanStats aggregates RecordTracer callbacks per operation name.
type spanStats struct {
	mu  sync.Mutex
	ops map[string]*opStat
}

func (s *spanStats) record(name string, d time.Duration, attrs []attribute.KeyValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.ops[name]
	if !ok {
		st = &opStat{}
		s.ops[name] = st
	}
	st.count++
	st.total += d
	st.max = max(st.max, d)
	for _, kv := range attrs {
		if kv.Key == "calls" && kv.Value.Type() == attribute.INT64 {
			st.calls += kv.Value.AsInt64()
		}
	}
}

func (s *spanStats) print(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ops) == 0 {
		return
	}
	names := make([]string, 0, len(s.ops))
	for n := range s.ops {
		names = append(names, n)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("spans:\n")
	for _, n := range names {
		st := s.ops[n]
		fmt.Fprintf(&b, "  %-24s x%-4d total %.1f ms  max %.1f ms", n, st.count, toMillis(st.total), toMillis(st.max))
		if st.calls > 0 {
			fmt.Fprintf(&b, "  calls %d", st.calls)
		}
		b.WriteByte('\n')
	}
	fmt.Fprint(w, b.String())
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
