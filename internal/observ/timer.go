// Package observ measures a `tern check` run: wall time per pipeline phase
// and named counters (memo hits, recursion hits, cache hits, suppressed
// duplicate diagnostics). The Report is serialized with the result in the
// structured output formats.
package observ

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

type phase struct {
	name  string
	start time.Time
	dur   time.Duration
	note  string
}

// Timer is safe for concurrent use; a nil *Timer ignores everything.
type Timer struct {
	mu       sync.Mutex
	phases   []phase
	counters map[string]int64
}

func NewTimer() *Timer {
	return &Timer{phases: make([]phase, 0, 8), counters: make(map[string]int64)}
}

// Begin starts a phase; pass the returned handle to End.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, phase{name: name, start: time.Now()})
	return len(t.phases) - 1
}

// End closes the phase; unknown handles are ignored.
func (t *Timer) End(idx int, note string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx >= 0 && idx < len(t.phases) {
		p := &t.phases[idx]
		p.dur, p.note = time.Since(p.start), note
	}
}

func (t *Timer) Count(name string, delta int64) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.counters[name] += delta
	t.mu.Unlock()
}

// PhaseReport is a phase in serializable form.
type PhaseReport struct {
	Name       string  `json:"name" yaml:"name" msgpack:"name"`
	DurationMS float64 `json:"duration_ms" yaml:"duration_ms" msgpack:"duration_ms"`
	Note       string  `json:"note,omitempty" yaml:"note,omitempty" msgpack:"note,omitempty"`
}

type CounterReport struct {
	Name  string `json:"name" yaml:"name" msgpack:"name"`
	Value int64  `json:"value" yaml:"value" msgpack:"value"`
}

// Report: phases in start order, counters by name.
type Report struct {
	TotalMS  float64         `json:"total_ms" yaml:"total_ms" msgpack:"total_ms"`
	Phases   []PhaseReport   `json:"phases" yaml:"phases" msgpack:"phases"`
	Counters []CounterReport `json:"counters,omitempty" yaml:"counters,omitempty" msgpack:"counters,omitempty"`
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	var r Report
	var total time.Duration
	for _, p := range t.phases {
		total += p.dur
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: millis(p.dur), Note: p.note})
	}
	r.TotalMS = millis(total)
	for _, name := range slices.Sorted(maps.Keys(t.counters)) {
		r.Counters = append(r.Counters, CounterReport{Name: name, Value: t.counters[name]})
	}
	return r
}

// String renders the report as an aligned table for --timings.
func (r Report) String() string {
	w := len("total")
	for _, p := range r.Phases {
		w = max(w, len(p.Name))
	}
	for _, c := range r.Counters {
		w = max(w, len(c.Name))
	}
	var b strings.Builder
	for _, p := range r.Phases {
		fmt.Fprintf(&b, "%-*s %8.2f ms", w, p.Name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "%-*s %8.2f ms\n", w, "total", r.TotalMS)
	for _, c := range r.Counters {
		fmt.Fprintf(&b, "%-*s %8d\n", w, c.Name, c.Value)
	}
	return b.String()
}

// Counter returns a counter's value, 0 when absent.
func (r Report) Counter(name string) int64 {
	i, ok := slices.BinarySearchFunc(r.Counters, name, func(c CounterReport, n string) int {
		return cmp.Compare(c.Name, n)
	})
	if !ok {
		return 0
	}
	return r.Counters[i].Value
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
