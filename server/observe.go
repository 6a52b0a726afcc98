// File: server/observe.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Hooks feeding protocol.Observer from the net/http engine, which has no
// observer of its own.

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/momentics/hioload-compat/api"
	"github.com/momentics/hioload-compat/protocol"
)

// observedAcceptor reports transient accept errors before passing them on.
type observedAcceptor struct {
	api.Acceptor
	observer protocol.Observer
}

func (a observedAcceptor) Accept(ctx context.Context) (api.DuplexStream, error) {
	stream, err := a.Acceptor.Accept(ctx)
	if err != nil && ctx.Err() == nil && !errors.Is(err, api.ErrAcceptEnded) {
		a.observer.AcceptFailed(err)
	}
	return stream, err
}

// connTracker turns http.Server connection states into open/close events.
type connTracker struct {
	observer protocol.Observer
	opened   sync.Map // net.Conn -> time.Time
}

func newConnTracker(o protocol.Observer) *connTracker {
	return &connTracker{observer: o}
}

func (t *connTracker) track(c net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		t.opened.Store(c, time.Now())
		t.observer.ConnOpened()
	case http.StateClosed, http.StateHijacked:
		if start, ok := t.opened.LoadAndDelete(c); ok {
			t.observer.ConnClosed(time.Since(start.(time.Time)))
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(p)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// observeStatus reports the status of every served request.
func observeStatus(next http.Handler, o protocol.Observer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, req)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		o.RequestServed(rec.status)
	})
}
