// File: adapters/executor_adapter.go
// Package adapters provides glue between native Go runtime primitives and the
// api contracts the protocol engine is written against.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// ExecutorAdapter implements api.Executor by handing tasks to the internal
// concurrency.Executor. Task panics are contained by the pool's per-task
// recovery and never reach the caller of Execute.

package adapters

import (
	"log/slog"

	"github.com/momentics/hioload-compat/api"
	"github.com/momentics/hioload-compat/internal/concurrency"
)

// ExecutorAdapter wraps an internal concurrency.Executor to satisfy the api.Executor contract.
type ExecutorAdapter struct {
	exec   *concurrency.Executor
	logger *slog.Logger
}

var _ api.Executor = (*ExecutorAdapter)(nil)

// NewExecutorAdapter wraps exec. A nil logger falls back to slog.Default().
func NewExecutorAdapter(exec *concurrency.Executor, logger *slog.Logger) *ExecutorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecutorAdapter{exec: exec, logger: logger}
}

// Execute schedules task and returns without waiting for it.
// A task refused by a closed pool is dropped and logged.
func (ea *ExecutorAdapter) Execute(task func()) {
	if err := ea.Submit(task); err != nil {
		ea.logger.Warn("task dropped", "error", err)
	}
}

// Submit schedules task like Execute but hands a refusal back to the
// caller, which still owns whatever the task would have released.
func (ea *ExecutorAdapter) Submit(task func()) error {
	return ea.exec.Submit(task)
}

// NumWorkers returns the current number of live worker goroutines.
func (ea *ExecutorAdapter) NumWorkers() int {
	return ea.exec.NumWorkers()
}
