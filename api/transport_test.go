package api_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/momentics/hioload-compat/api"
)

func TestInterfaceCompliance(t *testing.T) {
	var _ api.DuplexStream = (*mockStream)(nil)
	var _ api.Acceptor = (*mockAcceptor)(nil)
	var _ api.Executor = inlineExecutor{}
}

func TestErrAcceptEndedSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("serve: %w", api.ErrAcceptEnded)
	if !errors.Is(err, api.ErrAcceptEnded) {
		t.Fatal("wrapped ErrAcceptEnded not recognised")
	}
}

// mockStream реализует api.DuplexStream для проверки интерфейса
type mockStream struct{}

func (*mockStream) Read([]byte) (int, error)         { return 0, nil }
func (*mockStream) Write(p []byte) (int, error)      { return len(p), nil }
func (*mockStream) Flush() error                     { return nil }
func (*mockStream) Shutdown() error                  { return nil }
func (*mockStream) LocalAddr() net.Addr              { return nil }
func (*mockStream) RemoteAddr() net.Addr             { return nil }
func (*mockStream) SetReadDeadline(time.Time) error  { return nil }
func (*mockStream) SetWriteDeadline(time.Time) error { return nil }

type mockAcceptor struct{}

func (*mockAcceptor) Accept(context.Context) (api.DuplexStream, error) { return nil, api.ErrAcceptEnded }
func (*mockAcceptor) Addr() net.Addr                                   { return nil }
func (*mockAcceptor) Close() error                                     { return nil }

type inlineExecutor struct{}

func (inlineExecutor) Execute(task func()) { task() }
