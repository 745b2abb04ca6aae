package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the last N events in memory; `tern check` dumps it when
// resolution panics.
type RingTracer struct {
	mu     sync.RWMutex
	events []Event
	head   int // next write position
	n      int // stored events, <= len(events)
	level  Level
}

// NewRingTracer creates a ring of the given capacity (<= 0 means 4096).
func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = 4096
	}
	return &RingTracer{events: make([]Event, capacity), level: level}
}

// Emit stores ev, overwriting the oldest event when full. Heartbeats pass
// any level.
func (t *RingTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}
	t.mu.Lock()
	t.events[t.head] = *ev
	t.head = (t.head + 1) % len(t.events)
	t.n = min(t.n+1, len(t.events))
	t.mu.Unlock()
}

// Snapshot returns all stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	return t.Tail(len(t.events))
}

// Tail returns up to n most recent events, oldest first.
func (t *RingTracer) Tail(n int) []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n = max(0, min(n, t.n))
	out := make([]Event, n)
	capacity := len(t.events)
	first := (t.head - n + capacity) % capacity
	for i := range out {
		out[i] = t.events[(first+i)%capacity]
	}
	return out
}

// Dump writes the last n events (n <= 0 means all) in format.
func (t *RingTracer) Dump(w io.Writer, format Format, n int) error {
	if n <= 0 {
		n = len(t.events)
	}
	events := t.Tail(n)
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error  { return nil }
func (t *RingTracer) Close() error  { return nil }
func (t *RingTracer) Level() Level  { return t.level }
func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
