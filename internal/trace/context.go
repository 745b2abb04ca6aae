package trace

import "context"

type (
	tracerKey struct{}
	spanKey   struct{}
	taskKey   struct{}
)

// FromContext returns the tracer attached to ctx or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithTracer attaches t (nil means Nop) to ctx.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// SpanContext is the innermost open span of a context.
type SpanContext struct {
	SpanID uint64
}

func CurrentSpan(ctx context.Context) SpanContext {
	if ctx != nil {
		if sc, ok := ctx.Value(spanKey{}).(SpanContext); ok {
			return sc
		}
	}
	return SpanContext{}
}

func WithSpanContext(ctx context.Context, sc SpanContext) context.Context {
	return context.WithValue(ctx, spanKey{}, sc)
}

// WithTask tags events started under ctx with a resolution task ID; the
// memo storage sets it per driver task so interleaved spans of parallel
// files can be told apart.
func WithTask(ctx context.Context, task uint64) context.Context {
	return context.WithValue(ctx, taskKey{}, task)
}

// TaskOf returns the task tag of ctx, 0 if none.
func TaskOf(ctx context.Context) uint64 {
	if ctx != nil {
		if id, ok := ctx.Value(taskKey{}).(uint64); ok {
			return id
		}
	}
	return 0
}

// StartSpan opens a span under the one stored in ctx and returns a context
// carrying it, so nested work links to it.
func StartSpan(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	sp := begin(FromContext(ctx), scope, name, CurrentSpan(ctx).SpanID, TaskOf(ctx))
	if sp.id == 0 {
		return sp, ctx
	}
	return sp, WithSpanContext(ctx, SpanContext{SpanID: sp.id})
}
