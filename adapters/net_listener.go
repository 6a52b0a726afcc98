// File: adapters/net_listener.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// NetListener presents an api.Acceptor as a net.Listener, so stock engines
// such as net/http.Server can drive the accept loop over the same adapters.

package adapters

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/momentics/hioload-compat/api"
)

// NetListener bridges api.Acceptor to net.Listener.
type NetListener struct {
	acc    api.Acceptor
	ctx    context.Context
	cancel context.CancelFunc
}

var _ net.Listener = (*NetListener)(nil)

// NewNetListener wraps acc.
func NewNetListener(acc api.Acceptor) *NetListener {
	ctx, cancel := context.WithCancel(context.Background())
	return &NetListener{acc: acc, ctx: ctx, cancel: cancel}
}

// Accept returns the next connection. Transient errors are reported as
// temporary net.Errors so net/http backs off and retries; the end of the
// sequence is reported as a closed listener.
func (l *NetListener) Accept() (net.Conn, error) {
	stream, err := l.acc.Accept(l.ctx)
	if err != nil {
		if errors.Is(err, api.ErrAcceptEnded) || l.ctx.Err() != nil {
			return nil, &net.OpError{
				Op:   "accept",
				Net:  "tcp",
				Addr: l.acc.Addr(),
				Err:  fmt.Errorf("%w: %w", api.ErrAcceptEnded, net.ErrClosed),
			}
		}
		return nil, &transientError{err: err}
	}
	if c, ok := stream.(net.Conn); ok {
		return c, nil
	}
	return streamConn{stream}, nil
}

// Close stops the accept loop and releases the native listener.
func (l *NetListener) Close() error {
	l.cancel()
	return l.acc.Close()
}

func (l *NetListener) Addr() net.Addr {
	return l.acc.Addr()
}

// transientError marks a per-connection accept error as retryable.
type transientError struct {
	err error
}

func (e *transientError) Error() string   { return e.err.Error() }
func (e *transientError) Unwrap() error   { return e.err }
func (e *transientError) Timeout() bool   { return false }
func (e *transientError) Temporary() bool { return true }

// streamConn fills in the net.Conn methods a bare DuplexStream lacks.
type streamConn struct {
	api.DuplexStream
}

func (c streamConn) Close() error {
	return c.Shutdown()
}

func (c streamConn) SetDeadline(t time.Time) error {
	if err := c.SetReadDeadline(t); err != nil {
		return err
	}
	return c.SetWriteDeadline(t)
}
