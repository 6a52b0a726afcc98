// File: pool/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package pool provides typed object pools used by the protocol engine to
// reuse per-connection bufio readers and writers across connections.
package pool
