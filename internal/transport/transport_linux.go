// internal/transport/transport_linux.go
//go:build linux
// +build linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux listening-socket options applied between socket(2) and bind(2).

package transport

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

func (o Options) control(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		if o.ReusePort {
			if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
				sockErr = fmt.Errorf("SO_REUSEPORT: %w", err)
				return
			}
		}
		if o.DeferAccept > 0 {
			secs := int(o.DeferAccept.Seconds())
			if secs < 1 {
				secs = 1
			}
			if err := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_DEFER_ACCEPT, secs); err != nil {
				sockErr = fmt.Errorf("TCP_DEFER_ACCEPT: %w", err)
			}
		}
	})
	if err != nil {
		return err
	}
	return sockErr
}
