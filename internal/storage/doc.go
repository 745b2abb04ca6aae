// Package storage implements lazy "compute once and remember" tables.
//
// Each Memo cell moves through NotStarted -> InProgress -> Done.
// Reentering a cell from the same task (a recursive dependency) does not
// loop: the caller gets a placeholder value and the Recursive outcome.
// A task that needs a cell another task is computing blocks until that
// finishes. If the wait would close a cycle in the wait graph, it also gets
// the placeholder instead of blocking.
//
// The task (TaskID) travels in context.Context; nested computations of one
// task inherit its id.
package storage
