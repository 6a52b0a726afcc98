// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the native socket types
// the adapters wrap.

package fake

import (
	"bytes"
	"io"
	"net"
	"sync"
	"time"
)

// Conn is a fake net.Conn. Reads drain data queued with AddRecvData and then
// report io.EOF; writes are recorded. ReadFunc and WriteFunc override both.
type Conn struct {
	mu         sync.Mutex
	recvBuffer bytes.Buffer
	sent       bytes.Buffer
	closed     bool
	closeError error

	ReadFunc  func(p []byte) (int, error)
	WriteFunc func(p []byte) (int, error)

	ReadCalls  int
	WriteCalls int
	CloseCalls int

	Local  net.Addr
	Remote net.Addr

	ReadDeadline  time.Time
	WriteDeadline time.Time
}

// NewConn creates a fake connection with loopback addresses.
func NewConn() *Conn {
	return &Conn{
		Local:  &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 3000},
		Remote: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000},
	}
}

// Read implements net.Conn.Read.
func (c *Conn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ReadCalls++
	if c.closed {
		return 0, net.ErrClosed
	}
	if c.ReadFunc != nil {
		return c.ReadFunc(p)
	}
	if c.recvBuffer.Len() == 0 {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	return c.recvBuffer.Read(p)
}

// Write implements net.Conn.Write.
func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.WriteCalls++
	if c.closed {
		return 0, net.ErrClosed
	}
	if c.WriteFunc != nil {
		return c.WriteFunc(p)
	}
	return c.sent.Write(p)
}

// Close implements net.Conn.Close. A second Close reports net.ErrClosed,
// the same as a real socket.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CloseCalls++
	if c.closed {
		return net.ErrClosed
	}
	c.closed = true
	return c.closeError
}

func (c *Conn) LocalAddr() net.Addr  { return c.Local }
func (c *Conn) RemoteAddr() net.Addr { return c.Remote }

func (c *Conn) SetDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ReadDeadline, c.WriteDeadline = t, t
	return nil
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ReadDeadline = t
	return nil
}

func (c *Conn) SetWriteDeadline(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.WriteDeadline = t
	return nil
}

// SetCloseError configures the error returned by the first Close.
func (c *Conn) SetCloseError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeError = err
}

// AddRecvData queues data to be returned by subsequent Reads.
func (c *Conn) AddRecvData(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recvBuffer.Write(data)
}

// SentData returns everything written so far.
func (c *Conn) SentData() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return bytes.Clone(c.sent.Bytes())
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

var _ net.Conn = (*Conn)(nil)
