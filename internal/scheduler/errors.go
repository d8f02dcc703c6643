package scheduler

import "errors"

var (
	// ErrPanic wraps a panic recovered from a task run.
	ErrPanic = errors.New("scheduler: task panicked")
	// ErrUnknownTask is returned when a page has no task with the given name.
	ErrUnknownTask = errors.New("scheduler: unknown task")
	// ErrTornDown is returned for operations on a page that has been torn down.
	ErrTornDown = errors.New("scheduler: page torn down")
)
