// Package transport
// Author: momentics <momentics@gmail.com>
//
// Platform-independent listener factory and the native incoming-connections
// sequence consumed by the accept adapter.

package transport

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net"
	"time"
)

// Options controls how the listening socket is created.
type Options struct {
	// ReusePort sets SO_REUSEPORT before bind.
	ReusePort bool

	// DeferAccept holds a connection in the kernel until the peer has sent
	// data or the timeout passes (TCP_DEFER_ACCEPT). Zero disables it.
	DeferAccept time.Duration

	// KeepAlive is the TCP keep-alive period for accepted connections.
	// Zero keeps the Go default, negative disables keep-alives.
	KeepAlive time.Duration
}

// Listen binds a TCP listener on addr.
func Listen(ctx context.Context, addr string, opts Options) (*net.TCPListener, error) {
	lc := net.ListenConfig{
		KeepAlive: opts.KeepAlive,
		Control:   opts.control,
	}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp listen %s: %w", addr, err)
	}
	return ln.(*net.TCPListener), nil
}

// Incoming exposes the accept loop of ln as a sequence. Each item is either
// an accepted connection or the accept error for one pending connection.
// The sequence ends once ln is closed; it never ends on its own otherwise.
func Incoming(ln net.Listener) iter.Seq2[net.Conn, error] {
	return func(yield func(net.Conn, error) bool) {
		for {
			conn, err := ln.Accept()
			if err != nil && errors.Is(err, net.ErrClosed) {
				return
			}
			if !yield(conn, err) {
				return
			}
		}
	}
}
