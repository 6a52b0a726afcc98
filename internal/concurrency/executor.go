// File: internal/concurrency/executor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor dispatches tasks across worker goroutines. Pending tasks sit in an
// unbounded FIFO so Submit never blocks; core workers park on a condition
// variable while idle, extra workers are spawned on demand and exit once the
// queue runs dry. A panicking task is recovered and never stops its worker.

package concurrency

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
)

// TaskFunc is a unit of work to execute.
type TaskFunc func()

// Option customizes an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for recovered panics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxWorkers caps the number of live workers. Zero means unbounded.
func WithMaxWorkers(n int) Option {
	return func(e *Executor) {
		e.maxWorkers = n
	}
}

// WithPanicHandler registers fn to observe every recovered task panic.
func WithPanicHandler(fn func(recovered any)) Option {
	return func(e *Executor) {
		e.onPanic = fn
	}
}

// Executor manages an elastic pool of worker goroutines.
type Executor struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending *queue.Queue // of TaskFunc, guarded by mu
	closed  bool

	coreWorkers int
	maxWorkers  int
	running     int // live workers, guarded by mu
	idle        int // parked core workers not yet signalled, guarded by mu

	wg      sync.WaitGroup
	logger  *slog.Logger
	onPanic func(any)

	// statistics
	totalTasks     atomic.Int64
	completedTasks atomic.Int64
	panickedTasks  atomic.Int64
}

// NewExecutor creates an Executor keeping coreWorkers goroutines alive.
// If coreWorkers <= 0, defaults to runtime.NumCPU().
func NewExecutor(coreWorkers int, opts ...Option) *Executor {
	if coreWorkers <= 0 {
		coreWorkers = runtime.NumCPU()
	}
	e := &Executor{
		pending:     queue.New(),
		coreWorkers: coreWorkers,
		logger:      slog.Default(),
	}
	e.cond = sync.NewCond(&e.mu)
	for _, opt := range opts {
		opt(e)
	}
	if e.maxWorkers > 0 && e.maxWorkers < e.coreWorkers {
		e.coreWorkers = e.maxWorkers
	}

	e.mu.Lock()
	for i := 0; i < e.coreWorkers; i++ {
		e.spawnLocked(true)
	}
	e.mu.Unlock()
	return e
}

// Submit enqueues a task. It never waits for a worker and returns
// ErrExecutorClosed once Close has been called.
func (e *Executor) Submit(task TaskFunc) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrExecutorClosed
	}
	e.pending.Add(task)
	e.totalTasks.Add(1)

	switch {
	case e.idle > 0:
		e.idle--
		e.cond.Signal()
	case e.maxWorkers <= 0 || e.running < e.maxWorkers:
		e.spawnLocked(false)
	}
	return nil
}

// NumWorkers returns the current number of live workers.
func (e *Executor) NumWorkers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Close stops accepting tasks. Workers drain what is already queued and exit.
// Close does not wait; use Wait or Shutdown for that.
func (e *Executor) Close() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		e.cond.Broadcast()
	}
	e.mu.Unlock()
}

// Wait blocks until every worker has exited.
func (e *Executor) Wait() {
	e.wg.Wait()
}

// Shutdown closes the executor and waits for workers until ctx is done.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.Close()
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns basic executor metrics.
func (e *Executor) Stats() map[string]int64 {
	total := e.totalTasks.Load()
	completed := e.completedTasks.Load()
	return map[string]int64{
		"total_tasks":     total,
		"completed_tasks": completed,
		"inflight_tasks":  total - completed,
		"panicked_tasks":  e.panickedTasks.Load(),
		"num_workers":     int64(e.NumWorkers()),
	}
}

func (e *Executor) spawnLocked(core bool) {
	e.running++
	e.wg.Add(1)
	w := &worker{executor: e, core: core}
	go w.run()
}

// worker represents a single executor goroutine.
type worker struct {
	executor *Executor
	core     bool
}

func (w *worker) run() {
	e := w.executor
	defer e.wg.Done()
	for {
		e.mu.Lock()
		for e.pending.Length() == 0 {
			if e.closed || !w.core {
				e.running--
				e.mu.Unlock()
				return
			}
			e.idle++
			e.cond.Wait()
		}
		task := e.pending.Remove().(TaskFunc)
		e.mu.Unlock()

		w.executeTask(task)
	}
}

// executeTask runs the task and updates statistics, recovering from panics.
func (w *worker) executeTask(task TaskFunc) {
	e := w.executor
	defer func() {
		if r := recover(); r != nil {
			e.panickedTasks.Add(1)
			e.logger.Error("task panicked", "panic", r, "stack", string(debug.Stack()))
			if e.onPanic != nil {
				e.onPanic(r)
			}
		}
		e.completedTasks.Add(1)
	}()
	task()
}
