package storage

import "sync"

// waitGraph is the "task waits for task" graph shared by all tables of one Storage.
// A task has at most one outgoing edge at any time.
type waitGraph struct {
	mu    sync.Mutex
	edges map[TaskID]TaskID
}

func newWaitGraph() *waitGraph {
	return &waitGraph{edges: make(map[TaskID]TaskID)}
}

// tryWait registers the edge from -> to unless it closes a cycle.
func (g *waitGraph) tryWait(from, to TaskID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for cur, ok := to, true; ok; cur, ok = g.edges[cur] {
		if cur == from {
			return false
		}
	}
	g.edges[from] = to
	return true
}

func (g *waitGraph) done(from TaskID) {
	g.mu.Lock()
	delete(g.edges, from)
	g.mu.Unlock()
}
