// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import (
	"iter"
	"net"
	"sync/atomic"
)

// Item is one element of a native incoming-connections sequence.
type Item struct {
	Conn net.Conn
	Err  error
}

// Incoming is a scripted native incoming-connections sequence. Items are
// yielded in push order; the sequence parks when empty and ends after End.
type Incoming struct {
	items  chan Item
	pulled atomic.Int64
}

// NewIncoming creates a sequence pre-loaded with items.
func NewIncoming(items ...Item) *Incoming {
	in := &Incoming{items: make(chan Item, 64+len(items))}
	for _, it := range items {
		in.items <- it
	}
	return in
}

// Push appends one item.
func (in *Incoming) Push(conn net.Conn, err error) {
	in.items <- Item{Conn: conn, Err: err}
}

// End exhausts the sequence once queued items are consumed.
func (in *Incoming) End() {
	close(in.items)
}

// Pulled returns how many items have been handed out.
func (in *Incoming) Pulled() int {
	return int(in.pulled.Load())
}

// Seq returns the sequence view consumed by the accept adapter.
func (in *Incoming) Seq() iter.Seq2[net.Conn, error] {
	return func(yield func(net.Conn, error) bool) {
		for it := range in.items {
			in.pulled.Add(1)
			if !yield(it.Conn, it.Err) {
				return
			}
		}
	}
}
