// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"context"
	"iter"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListen_BindFailure(t *testing.T) {
	ln, err := Listen(context.Background(), "127.0.0.1:0", Options{})
	require.NoError(t, err)
	defer ln.Close()

	_, err = Listen(context.Background(), ln.Addr().String(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tcp listen")
}

func TestIncoming_YieldsInAcceptOrder(t *testing.T) {
	ln, err := Listen(context.Background(), "127.0.0.1:0", Options{})
	require.NoError(t, err)

	next, stop := iter.Pull2(Incoming(ln))
	defer stop()

	for i := 0; i < 3; i++ {
		client, err := net.Dial("tcp", ln.Addr().String())
		require.NoError(t, err)

		conn, err, ok := next()
		require.True(t, ok)
		require.NoError(t, err)
		assert.Equal(t, client.LocalAddr().String(), conn.RemoteAddr().String())

		client.Close()
		conn.Close()
	}
}

func TestIncoming_EndsWhenListenerCloses(t *testing.T) {
	ln, err := Listen(context.Background(), "127.0.0.1:0", Options{})
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	next, stop := iter.Pull2(Incoming(ln))
	defer stop()

	conn, err, ok := next()
	assert.False(t, ok)
	assert.Nil(t, conn)
	assert.NoError(t, err)
}

type flakyListener struct {
	net.Listener
	errs []error
}

func (l *flakyListener) Accept() (net.Conn, error) {
	if len(l.errs) > 0 {
		err := l.errs[0]
		l.errs = l.errs[1:]
		return nil, err
	}
	return l.Listener.Accept()
}

func TestIncoming_SurfacesAcceptErrors(t *testing.T) {
	ln, err := Listen(context.Background(), "127.0.0.1:0", Options{})
	require.NoError(t, err)
	defer ln.Close()

	reset := &net.OpError{Op: "accept", Net: "tcp", Err: assert.AnError}
	next, stop := iter.Pull2(Incoming(&flakyListener{Listener: ln, errs: []error{reset}}))
	defer stop()

	conn, err, ok := next()
	require.True(t, ok)
	assert.Nil(t, conn)
	assert.Same(t, reset, err)

	client, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	conn, err, ok = next()
	require.True(t, ok)
	require.NoError(t, err)
	conn.Close()
}
