// File: internal/transport/doc.go
// Package transport
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Native socket layer for hioload-compat. Binds the single TCP listener with
// platform socket options (selected by build tags) and exposes its accept
// loop as a lazy, ordered sequence of incoming connections. The Go runtime
// netpoller is the reactor underneath; nothing here buffers bytes.

package transport
