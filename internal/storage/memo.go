package storage

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"tern/internal/trace"
)

// State of a memo cell.
type State uint8

const (
	NotStarted State = iota
	InProgress
	Done
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in-progress"
	case Done:
		return "done"
	default:
		return "not-started"
	}
}

// Outcome describes how Get obtained its value.
type Outcome uint8

const (
	Computed  Outcome = iota // computed by this call
	Cached                   // already done (or another task finished it)
	Recursive                // cycle: a placeholder is returned
	Canceled                 // context canceled while waiting
)

func (o Outcome) String() string {
	switch o {
	case Cached:
		return "cached"
	case Recursive:
		return "recursive"
	case Canceled:
		return "canceled"
	default:
		return "computed"
	}
}

// Storage owns the wait graph and counters; tables are made with NewMemo.
type Storage struct {
	waits *waitGraph
	stats Stats
}

// Stats are cumulative counters over all memo tables of a Storage.
type Stats struct {
	Computed  atomic.Int64
	Hits      atomic.Int64
	Recursive atomic.Int64
	Waits     atomic.Int64
}

// New creates a storage manager.
func New() *Storage {
	return &Storage{waits: newWaitGraph()}
}

// Stats returns the live counters.
func (s *Storage) Stats() *Stats { return &s.stats }

type cell[V any] struct {
	state State
	owner TaskID
	done  chan struct{}
	value V
}

// Memo is a compute-once table keyed by K.
type Memo[K comparable, V any] struct {
	name     string
	storage  *Storage
	sentinel V

	mu    sync.Mutex
	cells map[K]*cell[V]
}

// NewMemo creates a table; sentinel is returned to requesters that hit a cycle.
func NewMemo[K comparable, V any](s *Storage, name string, sentinel V) *Memo[K, V] {
	return &Memo[K, V]{
		name:     name,
		storage:  s,
		sentinel: sentinel,
		cells:    make(map[K]*cell[V]),
	}
}

// Name returns the table name used in traces.
func (m *Memo[K, V]) Name() string { return m.name }

// Get returns the memoized value for key, computing it with compute on first
// request. compute runs on the caller's goroutine with the caller's task.
func (m *Memo[K, V]) Get(ctx context.Context, key K, compute func(ctx context.Context) V) (V, Outcome) {
	ctx = EnsureTask(ctx)
	task := TaskOf(ctx)
	for {
		m.mu.Lock()
		c, ok := m.cells[key]
		if !ok {
			c = &cell[V]{state: InProgress, owner: task, done: make(chan struct{})}
			m.cells[key] = c
			m.mu.Unlock()
			return m.run(ctx, key, c, compute), Computed
		}
		switch {
		case c.state == Done:
			m.mu.Unlock()
			m.storage.stats.Hits.Add(1)
			return c.value, Cached
		case c.owner == task:
			m.mu.Unlock()
			m.recursion(ctx, key)
			return m.sentinel, Recursive
		}
		owner, done := c.owner, c.done
		m.mu.Unlock()

		if !m.storage.waits.tryWait(task, owner) {
			m.recursion(ctx, key)
			return m.sentinel, Recursive
		}
		m.storage.stats.Waits.Add(1)
		select {
		case <-done:
			m.storage.waits.done(task)
		case <-ctx.Done():
			m.storage.waits.done(task)
			return m.sentinel, Canceled
		}
		// the cell is either done or reset after a panic; retry
	}
}

func (m *Memo[K, V]) run(ctx context.Context, key K, c *cell[V], compute func(context.Context) V) (value V) {
	finished := false
	defer func() {
		m.mu.Lock()
		if finished {
			c.value = value
			c.state = Done
		} else {
			// panic: the cell goes back to NotStarted and waiters restart the computation
			delete(m.cells, key)
		}
		m.mu.Unlock()
		close(c.done)
	}()
	value = compute(ctx)
	finished = true
	m.storage.stats.Computed.Add(1)
	return value
}

func (m *Memo[K, V]) recursion(ctx context.Context, key K) {
	m.storage.stats.Recursive.Add(1)
	if trace.FromContext(ctx).Enabled() {
		trace.PointCtx(ctx, trace.ScopeNode, "memo.recursive", fmt.Sprintf("%s[%v]", m.name, key))
	}
}

// Peek reports the state of key without computing it.
func (m *Memo[K, V]) Peek(key K) (V, State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cells[key]
	if !ok {
		var zero V
		return zero, NotStarted
	}
	if c.state != Done {
		return m.sentinel, c.state
	}
	return c.value, Done
}

// Len returns the number of started cells.
func (m *Memo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cells)
}
