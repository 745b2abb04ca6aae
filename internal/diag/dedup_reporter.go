package diag

import (
	"sync"

	"tern/internal/source"
)

// dedupKey: severity is not part of the key, a repeat with another severity
// is still noise (parser recovery often reports the same thing twice).
type dedupKey struct {
	code Code
	span source.Span
	msg  string
}

// DedupReporter forwards the first report for each (code, span, message)
// and counts the rest. Safe for concurrent use.
type DedupReporter struct {
	next       Reporter
	mu         sync.Mutex
	seen       map[dedupKey]struct{}
	suppressed int
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]struct{})}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil {
		return
	}
	key := dedupKey{code: code, span: primary, msg: msg}
	r.mu.Lock()
	if _, dup := r.seen[key]; dup {
		r.suppressed++
		r.mu.Unlock()
		return
	}
	r.seen[key] = struct{}{}
	r.mu.Unlock()
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
}

// Suppressed returns how many duplicate reports were dropped.
func (r *DedupReporter) Suppressed() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.suppressed
}
