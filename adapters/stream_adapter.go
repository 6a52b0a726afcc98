// File: adapters/stream_adapter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// StreamAdapter exposes one accepted native connection as an api.DuplexStream.
// Every call goes straight to the wrapped net.Conn: same byte counts, same
// error values, same blocking behaviour.

package adapters

import (
	"net"
	"time"

	"github.com/momentics/hioload-compat/api"
)

// flusher is implemented by native connections that hold bytes back.
type flusher interface {
	Flush() error
}

// StreamAdapter exclusively owns one native connection.
type StreamAdapter struct {
	conn net.Conn
}

var (
	_ api.DuplexStream = (*StreamAdapter)(nil)
	_ net.Conn         = (*StreamAdapter)(nil)
)

// NewStreamAdapter takes ownership of conn.
func NewStreamAdapter(conn net.Conn) *StreamAdapter {
	return &StreamAdapter{conn: conn}
}

func (s *StreamAdapter) Read(p []byte) (int, error) {
	return s.conn.Read(p)
}

func (s *StreamAdapter) Write(p []byte) (int, error) {
	return s.conn.Write(p)
}

// Flush delegates to the native connection when it buffers, otherwise
// there is nothing to push and it returns nil.
func (s *StreamAdapter) Flush() error {
	if f, ok := s.conn.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Shutdown closes the native connection. Repeated calls return the native
// close error (net.ErrClosed for sockets) without panicking.
func (s *StreamAdapter) Shutdown() error {
	return s.conn.Close()
}

// Close is Shutdown under its net.Conn name.
func (s *StreamAdapter) Close() error {
	return s.Shutdown()
}

func (s *StreamAdapter) LocalAddr() net.Addr  { return s.conn.LocalAddr() }
func (s *StreamAdapter) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

func (s *StreamAdapter) SetDeadline(t time.Time) error      { return s.conn.SetDeadline(t) }
func (s *StreamAdapter) SetReadDeadline(t time.Time) error  { return s.conn.SetReadDeadline(t) }
func (s *StreamAdapter) SetWriteDeadline(t time.Time) error { return s.conn.SetWriteDeadline(t) }

// NetConn returns the wrapped native connection.
func (s *StreamAdapter) NetConn() net.Conn {
	return s.conn
}
