package core

import (
	"context"
	"sync"
)

// Task is the single completion of one asynchronous negotiation step.
// Complete may be called from any goroutine; only the first call counts.
type Task[T any] struct {
	done chan struct{}

	mu    sync.Mutex
	fired bool
	then  []func(T, error)
	val   T
	err   error
}

func NewTask[T any]() *Task[T] {
	return &Task[T]{done: make(chan struct{})}
}

// CompletedTask returns a task that is already resolved.
func CompletedTask[T any](v T, err error) *Task[T] {
	t := NewTask[T]()
	t.Complete(v, err)
	return t
}

// FailedTask returns a task that already failed with err.
func FailedTask[T any](err error) *Task[T] {
	var zero T
	return CompletedTask(zero, err)
}

// Complete resolves the task and reports whether this call did it.
func (t *Task[T]) Complete(v T, err error) bool {
	t.mu.Lock()
	if t.fired {
		t.mu.Unlock()
		return false
	}
	t.fired = true
	t.val, t.err = v, err
	then := t.then
	t.then = nil
	close(t.done)
	t.mu.Unlock()

	for _, fn := range then {
		fn(v, err)
	}
	return true
}

func (t *Task[T]) Done() <-chan struct{} { return t.done }

// Result returns the outcome. It must only be called after Done is closed.
func (t *Task[T]) Result() (T, error) {
	return t.val, t.err
}

// Wait blocks until the task completes or ctx ends.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.val, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then runs fn exactly once with the outcome. fn runs on the goroutine that
// completes the task, or right away when the task is already complete. A task
// that never completes never runs fn and holds no goroutine.
func (t *Task[T]) Then(fn func(T, error)) {
	t.mu.Lock()
	if !t.fired {
		t.then = append(t.then, fn)
		t.mu.Unlock()
		return
	}
	v, err := t.val, t.err
	t.mu.Unlock()
	fn(v, err)
}
