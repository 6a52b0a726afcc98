// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package adapters

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-compat/fake"
	"github.com/momentics/hioload-compat/internal/transport"
)

func TestStreamAdapter_ReadMirrorsNative(t *testing.T) {
	payload := []byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n")
	for _, size := range []int{0, 1, 7, len(payload), 4096} {
		direct := fake.NewConn()
		direct.AddRecvData(payload)
		wrapped := fake.NewConn()
		wrapped.AddRecvData(payload)
		stream := NewStreamAdapter(wrapped)

		for round := 0; round < 3; round++ {
			want := make([]byte, size)
			got := make([]byte, size)
			wantN, wantErr := direct.Read(want)
			gotN, gotErr := stream.Read(got)

			assert.Equal(t, wantN, gotN, "size %d round %d", size, round)
			assert.Equal(t, wantErr, gotErr, "size %d round %d", size, round)
			assert.Equal(t, want[:wantN], got[:gotN])
		}
		assert.Equal(t, direct.ReadCalls, wrapped.ReadCalls, "one native call per adapter call")
	}
}

func TestStreamAdapter_WriteMirrorsNative(t *testing.T) {
	short := errors.New("short write")
	for _, size := range []int{0, 1, 512} {
		conn := fake.NewConn()
		conn.WriteFunc = func(p []byte) (int, error) {
			if len(p) > 256 {
				return 256, short
			}
			return len(p), nil
		}
		stream := NewStreamAdapter(conn)

		n, err := stream.Write(make([]byte, size))
		wantN, wantErr := conn.WriteFunc(make([]byte, size))
		assert.Equal(t, wantN, n, "size %d", size)
		assert.Equal(t, wantErr, err, "size %d", size)
		assert.Equal(t, 1, conn.WriteCalls)
	}
}

func TestStreamAdapter_ForwardsErrorsUnchanged(t *testing.T) {
	readErr := &net.OpError{Op: "read", Net: "tcp", Err: os.ErrDeadlineExceeded}
	writeErr := &net.OpError{Op: "write", Net: "tcp", Err: errors.New("broken pipe")}

	conn := fake.NewConn()
	conn.ReadFunc = func([]byte) (int, error) { return 0, readErr }
	conn.WriteFunc = func([]byte) (int, error) { return 3, writeErr }
	stream := NewStreamAdapter(conn)

	n, err := stream.Read(make([]byte, 8))
	assert.Zero(t, n)
	assert.Same(t, readErr, err)

	n, err = stream.Write([]byte("abcdef"))
	assert.Equal(t, 3, n)
	assert.Same(t, writeErr, err)
}

func TestStreamAdapter_ShutdownTwice(t *testing.T) {
	closeErr := errors.New("close failed")
	conn := fake.NewConn()
	conn.SetCloseError(closeErr)
	stream := NewStreamAdapter(conn)

	assert.Same(t, closeErr, stream.Shutdown())
	require.NotPanics(t, func() {
		assert.ErrorIs(t, stream.Shutdown(), net.ErrClosed)
	})
	assert.Equal(t, 2, conn.CloseCalls)
}

type flushingConn struct {
	*fake.Conn
	flushes int
}

func (c *flushingConn) Flush() error {
	c.flushes++
	return nil
}

func TestStreamAdapter_Flush(t *testing.T) {
	assert.NoError(t, NewStreamAdapter(fake.NewConn()).Flush())

	fc := &flushingConn{Conn: fake.NewConn()}
	require.NoError(t, NewStreamAdapter(fc).Flush())
	assert.Equal(t, 1, fc.flushes)
}

func TestStreamAdapter_DelegatesAddressesAndDeadlines(t *testing.T) {
	conn := fake.NewConn()
	stream := NewStreamAdapter(conn)
	assert.Equal(t, conn.Local, stream.LocalAddr())
	assert.Equal(t, conn.Remote, stream.RemoteAddr())

	deadline := time.Now().Add(time.Minute)
	require.NoError(t, stream.SetReadDeadline(deadline))
	require.NoError(t, stream.SetWriteDeadline(deadline.Add(time.Second)))
	assert.Equal(t, deadline, conn.ReadDeadline)
	assert.Equal(t, deadline.Add(time.Second), conn.WriteDeadline)
}

func TestStreamAdapter_OverTCP(t *testing.T) {
	ln, err := transport.Listen(context.Background(), "127.0.0.1:0", transport.Options{})
	require.NoError(t, err)
	acc := NewListenerAcceptAdapter(ln)
	defer acc.Close()

	client, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	stream, err := acc.Accept(context.Background())
	require.NoError(t, err)

	n, err := client.Write([]byte("ping"))
	require.NoError(t, err)
	require.Equal(t, 4, n)

	buf := make([]byte, 16)
	n, err = io.ReadAtLeast(stream, buf, 4)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))

	n, err = stream.Write(nil)
	assert.Zero(t, n)
	assert.NoError(t, err)

	n, err = stream.Write([]byte("pong"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	_, err = io.ReadFull(client, buf[:4])
	require.NoError(t, err)
	assert.Equal(t, "pong", string(buf[:4]))

	require.NoError(t, client.Close())
	n, err = stream.Read(buf)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF, "peer close reads as zero bytes and EOF")

	require.NoError(t, stream.Shutdown())
	require.NotPanics(t, func() {
		assert.ErrorIs(t, stream.Shutdown(), net.ErrClosed)
	})
	_, err = stream.Read(buf)
	assert.ErrorIs(t, err, net.ErrClosed)
}
