// Package api defines the contracts a protocol engine is written against:
// Executor for task spawning, Acceptor for the accept loop and DuplexStream
// for per-connection I/O. The adapters package implements them over native
// Go sockets and the worker pool in internal/concurrency.
package api
