package ast

import (
	"fmt"

	"fortio.org/safecast"
)

// Arena stores nodes of one kind contiguously. A node ID is a 1-based index and 0
// means "no node", so zero ExprID/TypeID/... safely stand for absence.
type Arena[T any] struct {
	data []T
}

func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{data: make([]T, 0, capHint)}
}

// Allocate appends value and returns its ID. Panics past 2^32-1 nodes.
func (a *Arena[T]) Allocate(value T) uint32 {
	a.data = append(a.data, value)
	return a.Len()
}

// Get returns nil for 0 and for IDs from another arena that are out of range.
func (a *Arena[T]) Get(id uint32) *T {
	if id == 0 || int(id) > len(a.data) {
		return nil
	}
	return &a.data[id-1]
}

func (a *Arena[T]) Len() uint32 {
	n, err := safecast.Conv[uint32](len(a.data))
	if err != nil {
		panic(fmt.Errorf("arena overflow: %w", err))
	}
	return n
}
