// Package api
// Author: momentics <momentics@gmail.com>
//
// Common errors shared by the adapters and the protocol engine.

package api

import "errors"

// ErrAcceptEnded reports that the native incoming-connections sequence
// is exhausted. It is a stop condition for the accept loop, not a fault.
var ErrAcceptEnded = errors.New("accept sequence ended")
