// File: server/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Server binds one TCP listener, wires the native runtime to the protocol
// engine through the adapters and runs until its context ends.

package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/momentics/hioload-compat/adapters"
	"github.com/momentics/hioload-compat/api"
	"github.com/momentics/hioload-compat/internal/concurrency"
	"github.com/momentics/hioload-compat/internal/transport"
	"github.com/momentics/hioload-compat/protocol"
)

// Server is the facade tying listener, executor and engine together.
type Server struct {
	cfg      *Config
	logger   *slog.Logger
	handler  http.Handler
	registry *prometheus.Registry
	banner   io.Writer

	running atomic.Bool
	ready   chan struct{}
	addr    net.Addr
}

// NewServer builds the Server facade. A nil cfg uses DefaultConfig.
func NewServer(cfg *Config, opts ...ServerOption) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Server{
		cfg:     cfg,
		logger:  slog.Default(),
		handler: protocol.Hello(),
		banner:  os.Stdout,
		ready:   make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Metrics && s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	return s, nil
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address. It is valid after Ready is closed.
func (s *Server) Addr() net.Addr {
	select {
	case <-s.ready:
		return s.addr
	default:
		return nil
	}
}

// Run binds the listener and serves until ctx is done or the listener's
// sequence ends; both are a clean stop and return nil. A bind failure is
// returned before anything is served. Run may be called once.
func (s *Server) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	ln, err := transport.Listen(ctx, s.cfg.ListenAddr, transport.Options{
		ReusePort:   s.cfg.ReusePort,
		DeferAccept: s.cfg.DeferAccept,
		KeepAlive:   s.cfg.KeepAlive,
	})
	if err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	s.addr = ln.Addr()
	fmt.Fprintf(s.banner, "Listening on http://%s\n", s.addr)
	close(s.ready)
	s.logger.Info("listening", "addr", s.addr, "engine", s.cfg.Engine)

	acc := adapters.NewListenerAcceptAdapter(ln)
	defer acc.Close()

	var (
		observer protocol.Observer = protocol.NopObserver{}
		metrics  *Metrics
		handler  = s.handler
	)
	if s.registry != nil {
		metrics = NewMetrics(s.registry)
		observer = metrics
		handler = withMetricsRoute(s.registry, handler)
	}

	switch s.cfg.Engine {
	case EngineNetHTTP:
		err = s.serveNetHTTP(ctx, acc, handler, observer)
	default:
		err = s.serveBuiltin(ctx, acc, handler, observer, metrics)
	}

	if ctx.Err() != nil || errors.Is(err, api.ErrAcceptEnded) || errors.Is(err, http.ErrServerClosed) {
		s.logger.Info("server stopped", "addr", s.addr)
		return nil
	}
	return err
}

// serveBuiltin runs protocol.Engine on the elastic executor. When the
// accept loop stops, connections are closed at once on cancellation and
// otherwise get ShutdownTimeout to finish.
func (s *Server) serveBuiltin(ctx context.Context, acc api.Acceptor, handler http.Handler,
	observer protocol.Observer, metrics *Metrics) error {
	execOpts := []concurrency.Option{
		concurrency.WithLogger(s.logger),
		concurrency.WithMaxWorkers(s.cfg.MaxWorkers),
	}
	if metrics != nil {
		execOpts = append(execOpts, concurrency.WithPanicHandler(metrics.TaskPanicked))
	}
	exec := concurrency.NewExecutor(s.cfg.ExecutorWorkers, execOpts...)
	if metrics != nil {
		metrics.WatchExecutor(exec)
	}

	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelConns()

	engine := protocol.NewEngine(adapters.NewExecutorAdapter(exec, s.logger), handler,
		protocol.WithLogger(s.logger),
		protocol.WithObserver(observer),
		protocol.WithReadTimeout(s.cfg.ReadTimeout),
		protocol.WithWriteTimeout(s.cfg.WriteTimeout),
		protocol.WithAcceptBackoff(s.cfg.AcceptBackoffMax),
		protocol.WithMaxHeaderBytes(s.cfg.MaxHeaderBytes),
		protocol.WithConnContext(connCtx),
	)
	err := engine.Serve(ctx, acc)
	_ = acc.Close()

	if ctx.Err() != nil {
		cancelConns()
	}
	drainCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if derr := exec.Shutdown(drainCtx); derr != nil {
		s.logger.Warn("drain timed out; closing connections", "timeout", s.cfg.ShutdownTimeout)
		cancelConns()
	}
	return err
}

// serveNetHTTP hands the accept loop to net/http.Server through
// adapters.NetListener.
func (s *Server) serveNetHTTP(ctx context.Context, acc api.Acceptor, handler http.Handler,
	observer protocol.Observer) error {
	conns := newConnTracker(observer)
	srv := &http.Server{
		Handler:        observeStatus(handler, observer),
		ReadTimeout:    s.cfg.ReadTimeout,
		WriteTimeout:   s.cfg.WriteTimeout,
		IdleTimeout:    s.cfg.ReadTimeout,
		MaxHeaderBytes: s.cfg.MaxHeaderBytes,
		ConnState:      conns.track,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	ln := adapters.NewNetListener(observedAcceptor{Acceptor: acc, observer: observer})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
	}

	drainCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(drainCtx); serr != nil {
		s.logger.Warn("drain timed out; closing connections", "error", serr)
		_ = srv.Close()
	}
	if err == nil {
		err = <-errCh
	}
	return err
}
