// File: adapters/accept_adapter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// AcceptAdapter turns the native incoming-connections sequence into the
// engine's accept-loop contract. Each Accept pulls exactly one item and maps
// it to a stream, a transient error, or api.ErrAcceptEnded.

package adapters

import (
	"context"
	"iter"
	"net"

	"github.com/momentics/hioload-compat/api"
	"github.com/momentics/hioload-compat/internal/transport"
)

// nativeListener is the part of a native listener the adapter needs.
type nativeListener interface {
	Addr() net.Addr
	Close() error
}

// AcceptOption customizes an AcceptAdapter.
type AcceptOption func(*AcceptAdapter)

// WithListener attaches the native listener that feeds the sequence. Close
// and context cancellation release it, which ends the sequence.
func WithListener(ln nativeListener) AcceptOption {
	return func(a *AcceptAdapter) {
		a.listener = ln
	}
}

// AcceptAdapter owns the native incoming sequence. It is driven by a single
// accept loop; Accept must not be called concurrently.
type AcceptAdapter struct {
	next     func() (net.Conn, error, bool)
	stop     func()
	listener nativeListener
	ended    bool
}

var _ api.Acceptor = (*AcceptAdapter)(nil)

// NewAcceptAdapter wraps a native incoming-connections sequence.
func NewAcceptAdapter(incoming iter.Seq2[net.Conn, error], opts ...AcceptOption) *AcceptAdapter {
	next, stop := iter.Pull2(incoming)
	a := &AcceptAdapter{next: next, stop: stop}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewListenerAcceptAdapter wraps the accept loop of a bound net.Listener.
func NewListenerAcceptAdapter(ln net.Listener) *AcceptAdapter {
	return NewAcceptAdapter(transport.Incoming(ln), WithListener(ln))
}

// Accept pulls one item from the native sequence. The calling goroutine
// parks inside the native accept until the netpoller reports readiness.
//
// A transient accept error is returned as is and the next call pulls the
// next item. An exhausted sequence yields api.ErrAcceptEnded, now and on
// every later call. When ctx is cancelled while parked on an owned
// listener, the listener is closed and ctx.Err() is returned. Over a bare
// sequence the call stays parked until the producer yields or ends.
func (a *AcceptAdapter) Accept(ctx context.Context) (api.DuplexStream, error) {
	if a.ended {
		return nil, api.ErrAcceptEnded
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.listener != nil {
		release := context.AfterFunc(ctx, func() { _ = a.listener.Close() })
		defer release()
	}

	conn, err, ok := a.next()
	if !ok {
		a.ended = true
		a.stop()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, api.ErrAcceptEnded
	}
	if err != nil {
		return nil, err
	}
	return NewStreamAdapter(conn), nil
}

// Addr returns the native listener address, or nil without a listener.
func (a *AcceptAdapter) Addr() net.Addr {
	if a.listener == nil {
		return nil
	}
	return a.listener.Addr()
}

// Close releases the native listener; a parked Accept then returns
// api.ErrAcceptEnded. Without a listener Close is a no-op: the producer of
// the sequence ends it.
func (a *AcceptAdapter) Close() error {
	if a.listener == nil {
		return nil
	}
	return a.listener.Close()
}
