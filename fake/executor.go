// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-compat/api"
)

// Executor is a minimal api.Executor running every task on its own
// goroutine and counting submissions.
type Executor struct {
	wg    sync.WaitGroup
	tasks atomic.Int64
}

var _ api.Executor = (*Executor)(nil)

func (e *Executor) Execute(task func()) {
	e.tasks.Add(1)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		task()
	}()
}

// Tasks returns how many tasks were submitted.
func (e *Executor) Tasks() int { return int(e.tasks.Load()) }

// Wait blocks until every submitted task has returned.
func (e *Executor) Wait() { e.wg.Wait() }
