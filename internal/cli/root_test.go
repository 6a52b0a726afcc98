package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/hioload-compat/protocol"
	"github.com/momentics/hioload-compat/server"
)

// syncBuffer is a bytes.Buffer safe for one writer and one poller.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRootCmd_Help(t *testing.T) {
	for _, args := range [][]string{{"--help"}, {"-h"}} {
		cmd := NewRootCommand()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(args)

		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "Hello World HTTP/1.1 server")
		assert.Contains(t, out.String(), "--addr")
		assert.Contains(t, out.String(), "--engine")
	}
}

func TestRootCmd_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "unknown engine", args: []string{"--engine", "bogus"}, want: server.ErrUnknownEngine},
		{name: "bad log level", args: []string{"--log-level", "loud"}},
		{name: "positional argument", args: []string{"serve-now"}},
		{name: "unknown flag", args: []string{"--nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCommand()
			cmd.SetOut(io.Discard)
			cmd.SetErr(io.Discard)
			cmd.SetArgs(append(tt.args, "--addr", "127.0.0.1:0"))

			err := cmd.Execute()
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestRootCmd_ServesUntilCancelled(t *testing.T) {
	cmd := NewRootCommand()
	out := &syncBuffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--addr", "127.0.0.1:0", "--workers", "2", "--shutdown-timeout", "1s"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	const prefix = "Listening on http://"
	require.Eventually(t, func() bool { return strings.Contains(out.String(), prefix) },
		5*time.Second, 5*time.Millisecond)
	addr := strings.TrimSpace(strings.TrimPrefix(out.String(), prefix))

	client := &http.Client{Transport: &http.Transport{}}
	resp, err := client.Get("http://" + addr + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, protocol.HelloBody, string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("command did not stop")
	}
}
