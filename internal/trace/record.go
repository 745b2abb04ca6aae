package trace

import (
	"sort"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// OnRecordTraceFunc receives one finished operation: its name, duration and
// attributes. Embedders forward it to their OpenTelemetry pipeline.
type OnRecordTraceFunc func(operationName string, duration time.Duration, attrs []attribute.KeyValue)

// RecordTracer turns span begin/end pairs into OnRecordTraceFunc calls.
type RecordTracer struct {
	mu     sync.Mutex
	level  Level
	open   map[uint64]time.Time
	record OnRecordTraceFunc
}

// NewRecordTracer creates a tracer that reports completed spans to fn.
func NewRecordTracer(level Level, fn OnRecordTraceFunc) *RecordTracer {
	return &RecordTracer{
		level:  level,
		open:   make(map[uint64]time.Time),
		record: fn,
	}
}

func (t *RecordTracer) Emit(ev *Event) {
	if t.record == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	switch ev.Kind {
	case KindSpanBegin:
		t.mu.Lock()
		t.open[ev.SpanID] = ev.Time
		t.mu.Unlock()
	case KindSpanEnd:
		t.mu.Lock()
		started, ok := t.open[ev.SpanID]
		delete(t.open, ev.SpanID)
		t.mu.Unlock()
		if !ok {
			return
		}
		t.record(ev.Scope.String()+"."+ev.Name, ev.Time.Sub(started), eventAttributes(ev))
	case KindPoint:
		t.record(ev.Scope.String()+"."+ev.Name, 0, eventAttributes(ev))
	}
}

func eventAttributes(ev *Event) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(ev.Extra)+2)
	if ev.Detail != "" {
		attrs = append(attrs, attribute.String("detail", ev.Detail))
	}
	keys := make([]string, 0, len(ev.Extra))
	for k := range ev.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := ev.Extra[k]
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			attrs = append(attrs, attribute.Int64(k, n))
			continue
		}
		attrs = append(attrs, attribute.String(k, v))
	}
	if ev.Task != 0 {
		attrs = append(attrs, attribute.Int64("task", int64(ev.Task))) //nolint:gosec
	}
	return attrs
}

func (t *RecordTracer) Flush() error { return nil }

func (t *RecordTracer) Close() error { return nil }

func (t *RecordTracer) Level() Level { return t.level }

func (t *RecordTracer) Enabled() bool { return t.level > LevelOff }
