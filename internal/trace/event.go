package trace

import "time"

// Kind tells apart span begin/end, a point and a heartbeat.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

// name in NDJSON, glyph in text output
var kindInfo = [...]struct{ name, glyph string }{
	KindSpanBegin: {"begin", "→"},
	KindSpanEnd:   {"end", "←"},
	KindPoint:     {"point", "•"},
	KindHeartbeat: {"heartbeat", "♡"},
}

func (k Kind) String() string {
	if int(k) < len(kindInfo) && kindInfo[k].name != "" {
		return kindInfo[k].name
	}
	return "unknown"
}

func (k Kind) glyph() string {
	if int(k) < len(kindInfo) {
		return kindInfo[k].glyph
	}
	return ""
}

// Scope is the granularity of an event; smaller is coarser. Level decides
// which scopes are emitted.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // driver.check
	ScopePass                    // parse, index, resolve
	ScopeModule                  // one file
	ScopeNode                    // one call site or descriptor
)

var scopeNames = [...]string{
	ScopeDriver: "driver",
	ScopePass:   "pass",
	ScopeModule: "module",
	ScopeNode:   "node",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // monotonic per process
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	// Task is the resolution task (storage.TaskID), 0 outside tasks.
	Task   uint64
	Name   string // "parse", "resolve.call", "memo.recursion", ...
	Detail string
	Extra  map[string]string
}
