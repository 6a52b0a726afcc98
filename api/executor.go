// File: api/executor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor contract used by the protocol engine to spawn per-connection tasks.

package api

// Executor hands independent units of work to the underlying scheduler.
type Executor interface {
	// Execute schedules task for concurrent execution and returns at once.
	// A task failure never propagates back to the caller.
	Execute(task func())
}
