// File: protocol/observer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import "time"

// Observer receives engine lifecycle events, e.g. for metrics.
type Observer interface {
	ConnOpened()
	ConnClosed(lifetime time.Duration)
	AcceptFailed(err error)
	RequestServed(status int)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) ConnOpened()              {}
func (NopObserver) ConnClosed(time.Duration) {}
func (NopObserver) AcceptFailed(error)       {}
func (NopObserver) RequestServed(int)        {}
