package storage

import (
	"context"
	"sync/atomic"

	"tern/internal/trace"
)

// TaskID identifies one logical resolution task (usually a driver goroutine).
type TaskID uint64

// NoTask marks a context without an assigned task.
const NoTask TaskID = 0

var taskSeq atomic.Uint64

type taskKey struct{}

// WithTask returns a context carrying a fresh task ID; trace events
// started under it are tagged with the same ID.
func WithTask(ctx context.Context) context.Context {
	id := taskSeq.Add(1)
	ctx = trace.WithTask(ctx, id)
	return context.WithValue(ctx, taskKey{}, TaskID(id))
}

// EnsureTask keeps an existing task or assigns a new one.
func EnsureTask(ctx context.Context) context.Context {
	if TaskOf(ctx) != NoTask {
		return ctx
	}
	return WithTask(ctx)
}

// TaskOf returns the task carried by ctx.
func TaskOf(ctx context.Context) TaskID {
	if ctx == nil {
		return NoTask
	}
	if id, ok := ctx.Value(taskKey{}).(TaskID); ok {
		return id
	}
	return NoTask
}
