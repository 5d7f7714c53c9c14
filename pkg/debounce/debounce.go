// Package debounce provides a cancellable scheduled-task primitive where only
// the most recently scheduled task may run.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Timer is the handle returned by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run after d. time.AfterFunc satisfies it once
// wrapped by RealAfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

// RealAfterFunc schedules with the runtime timer.
func RealAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Task is one scheduled invocation. Its context is canceled when the task is
// superseded, canceled explicitly, or finishes.
type Task struct {
	ctx    context.Context
	cancel context.CancelFunc
	timer  Timer
}

// Context returns the task's context.
func (t *Task) Context() context.Context { return t.ctx }

// Cancel stops the timer if it has not fired and cancels the context.
func (t *Task) Cancel() {
	if t.timer != nil {
		t.timer.Stop()
	}
	t.cancel()
}

// Debouncer runs at most one pending task at a time. Scheduling a new task
// cancels the previous one; a task whose timer already fired still observes
// the cancellation through its context.
type Debouncer struct {
	delay time.Duration
	after AfterFunc

	mu      sync.Mutex
	pending *Task
	closed  bool
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithAfterFunc replaces the timer source, mostly for tests.
func WithAfterFunc(after AfterFunc) Option {
	return func(d *Debouncer) { d.after = after }
}

// New creates a debouncer with the given quiet period.
func New(delay time.Duration, opts ...Option) *Debouncer {
	d := &Debouncer{delay: delay, after: RealAfterFunc}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Delay is the quiet period.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Schedule cancels any pending task and schedules fn to run after the quiet
// period. fn receives the task context; it must check ctx.Err() before
// publishing results. Schedule returns nil after Close.
func (d *Debouncer) Schedule(fn func(ctx context.Context)) *Task {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	if d.pending != nil {
		d.pending.Cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	task := &Task{ctx: ctx, cancel: cancel}
	task.timer = d.after(d.delay, func() {
		if ctx.Err() != nil {
			return
		}
		defer d.finish(task)
		fn(ctx)
	})
	d.pending = task
	return task
}

func (d *Debouncer) finish(task *Task) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == task {
		d.pending = nil
	}
	task.cancel()
}

// Cancel cancels the pending task, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Cancel()
		d.pending = nil
	}
}

// Pending reports whether a task is scheduled and has not finished.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Close cancels the pending task and refuses further scheduling.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.pending.Cancel()
		d.pending = nil
	}
	d.closed = true
}
