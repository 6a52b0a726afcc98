// File: protocol/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package protocol implements the HTTP/1.1 engine served on top of the
// api contracts. The engine owns the accept loop and the per-connection
// request/response cycle; it never touches native sockets directly, only
// api.Acceptor, api.DuplexStream and api.Executor.
package protocol
