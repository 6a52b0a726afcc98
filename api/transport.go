// File: api/transport.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Defines the duplex stream and acceptor abstractions the protocol engine
// is written against, independent of the concrete socket types beneath.

package api

import (
	"context"
	"net"
	"time"
)

// DuplexStream abstracts one accepted full-duplex connection.
// Every call is forwarded to the native socket without buffering.
type DuplexStream interface {
	// Read reads into a caller-provided buffer.
	// n == 0 with io.EOF signals a graceful peer close.
	Read(p []byte) (n int, err error)

	// Write writes the caller-provided buffer.
	Write(p []byte) (n int, err error)

	// Flush pushes any bytes the native socket holds back.
	Flush() error

	// Shutdown closes the native socket. Calling it twice is safe and
	// reports whatever the native close reports.
	Shutdown() error

	LocalAddr() net.Addr
	RemoteAddr() net.Addr
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// Acceptor produces the next incoming connection, one per call.
//
// Accept returns exactly one of:
//   - a stream and a nil error,
//   - a nil stream and a transient error; Accept may be called again,
//   - a nil stream and ErrAcceptEnded once the native sequence is exhausted.
type Acceptor interface {
	Accept(ctx context.Context) (DuplexStream, error)

	// Addr returns the listener's network address.
	Addr() net.Addr

	// Close releases the native listener.
	Close() error
}
