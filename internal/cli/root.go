// File: internal/cli/root.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Root command of hioload-compat: flags populate server.Config and the
// command serves until SIGINT or SIGTERM.

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/momentics/hioload-compat/server"
)

// NewRootCommand builds a fresh root command.
func NewRootCommand() *cobra.Command {
	cfg := server.DefaultConfig()
	var logLevel string

	cmd := &cobra.Command{
		Use:   "hioload-compat",
		Short: "Hello World HTTP/1.1 server on native Go sockets",
		Long: `hioload-compat serves a fixed "Hello World!" response over HTTP/1.1.

The protocol engine runs on the Go netpoller through thin executor, accept
and stream adapters. It stops on SIGINT or SIGTERM.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			srv, err := server.NewServer(cfg,
				server.WithLogger(logger),
				server.WithBanner(cmd.OutOrStdout()),
			)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.ListenAddr, "addr", cfg.ListenAddr, "TCP listen address")
	f.IntVar(&cfg.ExecutorWorkers, "workers", cfg.ExecutorWorkers, "Core executor workers (0 = NumCPU)")
	f.IntVar(&cfg.MaxWorkers, "max-workers", cfg.MaxWorkers, "Upper bound on executor workers (0 = unbounded)")
	f.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "Per-request read timeout, includes keep-alive idle")
	f.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "Per-response write timeout")
	f.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Drain budget on shutdown")
	f.DurationVar(&cfg.AcceptBackoffMax, "accept-backoff", cfg.AcceptBackoffMax, "Retry delay ceiling after accept errors")
	f.IntVar(&cfg.MaxHeaderBytes, "max-header-bytes", cfg.MaxHeaderBytes, "Request header size limit in bytes")
	f.BoolVar(&cfg.ReusePort, "reuse-port", cfg.ReusePort, "Set SO_REUSEPORT on the listener")
	f.DurationVar(&cfg.DeferAccept, "defer-accept", cfg.DeferAccept, "TCP_DEFER_ACCEPT timeout (linux)")
	f.DurationVar(&cfg.KeepAlive, "tcp-keepalive", cfg.KeepAlive, "TCP keep-alive period (0 = system default)")
	f.StringVar(&cfg.Engine, "engine", cfg.Engine, "Protocol engine: builtin or nethttp")
	f.BoolVar(&cfg.Metrics, "metrics", cfg.Metrics, "Expose Prometheus metrics on /metrics")
	f.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	return cmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
