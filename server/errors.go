// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import "errors"

var (
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("server already running")

	// ErrInvalidConfig reports a configuration value out of range.
	ErrInvalidConfig = errors.New("invalid server config")

	// ErrUnknownEngine reports an unsupported Config.Engine value.
	ErrUnknownEngine = errors.New("unknown engine")
)
