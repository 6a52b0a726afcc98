//go:build !linux
// +build !linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package transport

import (
	"errors"
	"fmt"
	"syscall"
)

func (o Options) control(_, _ string, _ syscall.RawConn) error {
	if o.ReusePort || o.DeferAccept > 0 {
		return fmt.Errorf("listener socket options: %w", errors.ErrUnsupported)
	}
	return nil
}
