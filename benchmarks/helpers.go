// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"github.com/comalice/updatable"
	"github.com/comalice/updatable/clock"
)

// counter is the cheapest useful participant.
type counter struct {
	updatable.Base
	total int64
}

func (c *counter) Update(delta int64) {
	c.total += delta
}

// NewPopulated creates a registry on a manual clock holding n counters.
func NewPopulated(n int) (*updatable.Registry, *clock.Manual, []updatable.Handle) {
	src := clock.NewManual(0)
	reg := updatable.New(updatable.WithClock(src), updatable.WithCapacity(n))
	handles := make([]updatable.Handle, n)
	for i := range handles {
		handles[i] = reg.Register(&counter{})
	}
	return reg, src, handles
}
