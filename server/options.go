// File: server/options.go
// Package server defines functional options for the Server facade.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// ServerOption customizes server initialization.
type ServerOption func(*Server)

// WithLogger sets the logger shared by the server, engine and executor.
func WithLogger(l *slog.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHandler replaces the default Hello World handler.
func WithHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		if h != nil {
			s.handler = h
		}
	}
}

// WithExecutorWorkers sets the number of core worker goroutines.
func WithExecutorWorkers(n int) ServerOption {
	return func(s *Server) {
		s.cfg.ExecutorWorkers = n
	}
}

// WithEngine selects EngineBuiltin or EngineNetHTTP.
func WithEngine(name string) ServerOption {
	return func(s *Server) {
		s.cfg.Engine = name
	}
}

// WithRegistry registers server metrics on reg and enables /metrics.
func WithRegistry(reg *prometheus.Registry) ServerOption {
	return func(s *Server) {
		s.registry = reg
		s.cfg.Metrics = reg != nil
	}
}

// WithBanner redirects the "Listening on" line, os.Stdout by default.
func WithBanner(w io.Writer) ServerOption {
	return func(s *Server) {
		if w != nil {
			s.banner = w
		}
	}
}
