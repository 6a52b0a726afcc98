// File: server/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"fmt"
	"time"

	"github.com/momentics/hioload-compat/internal/concurrency"
	"github.com/momentics/hioload-compat/protocol"
)

// Engines selectable through Config.Engine.
const (
	// EngineBuiltin serves connections with protocol.Engine on the executor.
	EngineBuiltin = "builtin"
	// EngineNetHTTP serves connections with net/http.Server over the same
	// accept and stream adapters.
	EngineNetHTTP = "nethttp"
)

// Config holds all server-side configuration parameters.
type Config struct {
	ListenAddr       string        // TCP bind address
	ExecutorWorkers  int           // core worker goroutines (0 = NumCPU)
	MaxWorkers       int           // cap on live workers (0 = unbounded)
	ReadTimeout      time.Duration // per-request read deadline, includes keep-alive idle
	WriteTimeout     time.Duration // per-response write deadline
	ShutdownTimeout  time.Duration // drain budget once the accept loop stops
	AcceptBackoffMax time.Duration // ceiling for retry delay after accept errors
	MaxHeaderBytes   int           // request line plus headers; larger requests get 431
	ReusePort        bool          // SO_REUSEPORT on the listening socket
	DeferAccept      time.Duration // TCP_DEFER_ACCEPT (linux only)
	KeepAlive        time.Duration // TCP keep-alive period (0 = Go default)
	Engine           string        // EngineBuiltin or EngineNetHTTP
	Metrics          bool          // expose Prometheus metrics on /metrics
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:       "127.0.0.1:3000",
		ExecutorWorkers:  0,
		MaxWorkers:       0,
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     10 * time.Second,
		ShutdownTimeout:  10 * time.Second,
		AcceptBackoffMax: time.Second,
		MaxHeaderBytes:   protocol.DefaultMaxHeaderBytes,
		Engine:           EngineBuiltin,
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.ListenAddr == "":
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	case c.ExecutorWorkers < 0:
		return fmt.Errorf("%w: executor workers %d", concurrency.ErrInvalidWorkerCount, c.ExecutorWorkers)
	case c.MaxWorkers < 0:
		return fmt.Errorf("%w: max workers %d", concurrency.ErrInvalidWorkerCount, c.MaxWorkers)
	case c.MaxWorkers > 0 && c.ExecutorWorkers > c.MaxWorkers:
		return fmt.Errorf("%w: executor workers %d exceed max workers %d",
			concurrency.ErrInvalidWorkerCount, c.ExecutorWorkers, c.MaxWorkers)
	case c.ReadTimeout < 0, c.WriteTimeout < 0, c.ShutdownTimeout < 0, c.AcceptBackoffMax < 0, c.DeferAccept < 0:
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	case c.MaxHeaderBytes < 0:
		return fmt.Errorf("%w: max header bytes %d", ErrInvalidConfig, c.MaxHeaderBytes)
	}
	switch c.Engine {
	case EngineBuiltin, EngineNetHTTP:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEngine, c.Engine)
	}
	return nil
}
