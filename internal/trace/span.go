package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns a process-wide monotonically increasing event number.
func NextSeq() uint64 { return seqCounter.Add(1) }

// NextSpanID returns a fresh non-zero span ID.
func NextSpanID() uint64 { return spanCounter.Add(1) }

// Span is an open interval of work; End emits the closing event. A Span
// from a disabled tracer is inert and all its methods are no-ops.
type Span struct {
	tracer  Tracer
	id      uint64
	parent  uint64
	task    uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

var inert = &Span{tracer: Nop}

// Begin opens a span without context; task is left unset.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	return begin(t, scope, name, parent, 0)
}

func begin(t Tracer, scope Scope, name string, parent, task uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return inert
	}
	s := &Span{
		tracer:  t,
		id:      NextSpanID(),
		parent:  parent,
		task:    task,
		scope:   scope,
		name:    name,
		started: time.Now(),
	}
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	ev := &Event{
		Time:     at,
		Seq:      NextSeq(),
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Task:     s.task,
		Name:     s.name,
		Detail:   detail,
	}
	if kind == KindSpanEnd {
		ev.Extra = s.extra
	}
	return ev
}

// End emits the end event with detail (e.g. the resolved callee) and
// returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 {
		return 0
	}
	now := time.Now()
	s.tracer.Emit(s.event(KindSpanEnd, now, detail))
	return now.Sub(s.started)
}

// WithExtra attaches key=value to the end event; numeric values become
// int64 attributes in RecordTracer.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event attached to parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	point(t, scope, name, detail, parent, 0)
}

// PointCtx emits an instant event under the span and task carried by ctx.
func PointCtx(ctx context.Context, scope Scope, name, detail string) {
	point(FromContext(ctx), scope, name, detail, CurrentSpan(ctx).SpanID, TaskOf(ctx))
}

func point(t Tracer, scope Scope, name, detail string, parent, task uint64) {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Seq:      NextSeq(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: parent,
		Task:     task,
		Name:     name,
		Detail:   detail,
	})
}
