// File: protocol/engine.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Engine runs the accept loop over an api.Acceptor and serves every accepted
// stream on its own executor task, one HTTP/1.1 request/response at a time.

package protocol

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/momentics/hioload-compat/api"
	"github.com/momentics/hioload-compat/pool"
)

const (
	ioBufferSize       = 4 << 10
	minAcceptBackoff   = 5 * time.Millisecond
	defaultBackoffCeil = time.Second

	// DefaultMaxHeaderBytes matches net/http.DefaultMaxHeaderBytes.
	DefaultMaxHeaderBytes = 1 << 20
)

var errHeaderTooLarge = errors.New("request header too large")

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver registers lifecycle callbacks.
func WithObserver(o Observer) EngineOption {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithReadTimeout bounds the wait for each request, including idle time
// between keep-alive requests. Zero disables it.
func WithReadTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.readTimeout = d }
}

// WithWriteTimeout bounds writing each response. Zero disables it.
func WithWriteTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.writeTimeout = d }
}

// WithAcceptBackoff caps the delay between retries after transient accept
// errors.
func WithAcceptBackoff(ceil time.Duration) EngineOption {
	return func(e *Engine) {
		if ceil > 0 {
			e.backoffMax = ceil
		}
	}
}

// WithMaxHeaderBytes caps the request line plus header block. Larger
// requests get 431 and the connection is closed. Non-positive values keep
// DefaultMaxHeaderBytes.
func WithMaxHeaderBytes(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxHeaderBytes = int64(n)
		}
	}
}

// WithConnContext makes connection tasks live under ctx instead of the
// context passed to Serve, so the accept loop can stop while in-flight
// connections drain.
func WithConnContext(ctx context.Context) EngineOption {
	return func(e *Engine) { e.connCtx = ctx }
}

// Engine is the HTTP/1.1 protocol engine.
type Engine struct {
	exec     api.Executor
	handler  http.Handler
	logger   *slog.Logger
	observer Observer

	readTimeout  time.Duration
	writeTimeout time.Duration
	backoffMax   time.Duration
	connCtx      context.Context

	maxHeaderBytes int64

	readers *pool.SyncPool[*bufio.Reader]
	writers *pool.SyncPool[*bufio.Writer]
}

// NewEngine builds an engine spawning connection tasks on exec and
// answering requests with handler.
func NewEngine(exec api.Executor, handler http.Handler, opts ...EngineOption) *Engine {
	e := &Engine{
		exec:       exec,
		handler:    handler,
		logger:     slog.Default(),
		observer:   NopObserver{},
		backoffMax: defaultBackoffCeil,

		maxHeaderBytes: DefaultMaxHeaderBytes,
		readers: pool.NewSyncPool(func() *bufio.Reader {
			return bufio.NewReaderSize(nil, ioBufferSize)
		}).WithReset(func(br *bufio.Reader) { br.Reset(nil) }),
		writers: pool.NewSyncPool(func() *bufio.Writer {
			return bufio.NewWriterSize(nil, ioBufferSize)
		}).WithReset(func(bw *bufio.Writer) { bw.Reset(nil) }),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Serve runs the accept loop until ctx is done or the acceptor's sequence
// ends. It returns ctx.Err() on cancellation and api.ErrAcceptEnded when
// the sequence is exhausted; transient accept errors are logged and the
// loop polls again after a capped exponential backoff.
//
// The executor must stay open until Serve returns. If it exposes
// Submit(func()) error, a refused task has its stream shut down here.
func (e *Engine) Serve(ctx context.Context, acc api.Acceptor) error {
	connBase := ctx
	if e.connCtx != nil {
		connBase = e.connCtx
	}

	var delay time.Duration
	for {
		stream, err := acc.Accept(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if errors.Is(err, api.ErrAcceptEnded) {
				e.logger.Info("accept sequence ended", "addr", acc.Addr())
				return err
			}

			e.observer.AcceptFailed(err)
			delay = nextBackoff(delay, e.backoffMax)
			e.logger.Warn("accept failed; retrying", "error", err, "retry_in", delay)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			continue
		}

		delay = 0
		e.observer.ConnOpened()
		e.dispatch(e.connTask(connBase, stream), stream)
	}
}

// taskSubmitter is an api.Executor that reports refused tasks.
type taskSubmitter interface {
	Submit(task func()) error
}

func (e *Engine) dispatch(task func(), stream api.DuplexStream) {
	s, ok := e.exec.(taskSubmitter)
	if !ok {
		e.exec.Execute(task)
		return
	}
	if err := s.Submit(task); err != nil {
		e.logger.Warn("connection dropped", "remote", stream.RemoteAddr(), "error", err)
		_ = stream.Shutdown()
		e.observer.ConnClosed(0)
	}
}

func nextBackoff(cur, ceil time.Duration) time.Duration {
	if cur == 0 {
		cur = minAcceptBackoff
	} else {
		cur *= 2
	}
	if cur > ceil {
		cur = ceil
	}
	return cur
}

// connTask owns stream for its whole life. The stream is shut down when the
// task returns, panics, or its context ends.
func (e *Engine) connTask(ctx context.Context, stream api.DuplexStream) func() {
	return func() {
		log := e.logger.With("conn_id", uuid.NewString(), "remote", stream.RemoteAddr())
		start := time.Now()
		release := context.AfterFunc(ctx, func() { _ = stream.Shutdown() })
		defer func() {
			release()
			if err := stream.Shutdown(); err != nil && !errors.Is(err, net.ErrClosed) {
				log.Debug("shutdown failed", "error", err)
			}
			e.observer.ConnClosed(time.Since(start))
		}()

		if err := e.serveConn(stream); err != nil {
			log.Debug("connection closed", "error", err)
		}
	}
}

func (e *Engine) serveConn(stream api.DuplexStream) error {
	lr := &headerLimitReader{r: stream}
	br := e.readers.Get()
	br.Reset(lr)
	defer e.readers.Put(br)
	bw := e.writers.Get()
	bw.Reset(stream)
	defer e.writers.Put(bw)

	for {
		if e.readTimeout > 0 {
			if err := stream.SetReadDeadline(time.Now().Add(e.readTimeout)); err != nil {
				return err
			}
		}
		lr.arm(e.maxHeaderBytes)
		req, err := http.ReadRequest(br)
		if err != nil {
			switch {
			case lr.exhausted():
				_ = e.writeResponse(stream, bw, errorResponse(http.StatusRequestHeaderFieldsTooLarge))
				return errHeaderTooLarge
			case errors.Is(err, io.EOF):
				return nil
			case isMalformed(err):
				_ = e.writeResponse(stream, bw, errorResponse(http.StatusBadRequest))
			}
			return err
		}
		lr.arm(math.MaxInt64)

		keepAlive := !req.Close && req.ProtoAtLeast(1, 1)
		rw := newResponseWriter()
		e.handler.ServeHTTP(rw, req)
		resp := rw.response(req, !keepAlive)
		if err := e.writeResponse(stream, bw, resp); err != nil {
			return err
		}
		e.observer.RequestServed(resp.StatusCode)

		if !keepAlive {
			return nil
		}
		if _, err := io.Copy(io.Discard, req.Body); err != nil {
			return err
		}
		_ = req.Body.Close()
	}
}

func (e *Engine) writeResponse(stream api.DuplexStream, bw *bufio.Writer, resp *http.Response) error {
	if e.writeTimeout > 0 {
		if err := stream.SetWriteDeadline(time.Now().Add(e.writeTimeout)); err != nil {
			return err
		}
	}
	if err := resp.Write(bw); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return stream.Flush()
}

// isMalformed separates protocol errors from transport errors.
func isMalformed(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrUnexpectedEOF) {
		return false
	}
	return true
}

func errorResponse(code int) *http.Response {
	rw := newResponseWriter()
	rw.WriteHeader(code)
	return rw.response(nil, true)
}

// headerLimitReader reports io.EOF once its budget is spent. The engine
// arms it with the header limit before each request and lifts it for the
// body.
type headerLimitReader struct {
	r      io.Reader
	remain int64
}

func (l *headerLimitReader) arm(n int64) { l.remain = n }

func (l *headerLimitReader) exhausted() bool { return l.remain <= 0 }

func (l *headerLimitReader) Read(p []byte) (int, error) {
	if l.remain <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > l.remain {
		p = p[:l.remain]
	}
	n, err := l.r.Read(p)
	l.remain -= int64(n)
	return n, err
}
