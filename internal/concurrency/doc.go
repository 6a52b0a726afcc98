// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Task execution primitives for hioload-compat: an elastic worker pool with
// an unbounded FIFO of pending tasks and per-task panic isolation.
package concurrency
