// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncPool_ResetOnPut(t *testing.T) {
	p := NewSyncPool(func() *bytes.Buffer { return new(bytes.Buffer) }).
		WithReset(func(b *bytes.Buffer) { b.Reset() })

	b := p.Get()
	b.WriteString("stale")
	p.Put(b)

	assert.Zero(t, b.Len())
	assert.Zero(t, p.Get().Len())
}

func TestSyncPool_CreatesOnEmpty(t *testing.T) {
	calls := 0
	p := NewSyncPool(func() int { calls++; return 42 })
	assert.Equal(t, 42, p.Get())
	assert.Equal(t, 1, calls)
}
