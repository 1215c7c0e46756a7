// Package clock provides the tick counters an updatable.Registry reads to
// derive elapsed time.
//
// A Source is an opaque, monotonically increasing unsigned counter, the way
// millis() or a SysTick counter is on a microcontroller. Callers never rely on
// its absolute magnitude; they only subtract two readings with Elapsed, which
// stays correct when the counter wraps past its maximum value.
package clock

import (
	"sync/atomic"
	"time"
)

// Source reads a monotonically increasing 32-bit tick counter.
type Source interface {
	Ticks() uint32
}

// Unsigned is the set of counter widths Elapsed accepts.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint | ~uintptr
}

// Elapsed returns the forward interval from prev to now.
// Unsigned subtraction is modular, so a counter that wrapped between the two
// readings still yields the short forward distance.
func Elapsed[T Unsigned](prev, now T) T {
	return now - prev
}

// Func adapts a plain read function, e.g. a hardware timer register read.
type Func func() uint32

// Ticks implements Source.
func (f Func) Ticks() uint32 {
	return f()
}

// Monotonic counts units elapsed since it was created, truncated to 32 bits.
// time.Since uses the runtime's monotonic reading, so wall clock changes do
// not affect it.
type Monotonic struct {
	start  time.Time
	unit   time.Duration
	offset uint32
}

// NewMonotonic creates a Monotonic counting in unit (time.Millisecond mirrors millis()).
func NewMonotonic(unit time.Duration) *Monotonic {
	return NewMonotonicAt(unit, 0)
}

// NewMonotonicAt creates a Monotonic whose first reading is offset.
// Starting close to the 32-bit maximum exercises wraparound early.
func NewMonotonicAt(unit time.Duration, offset uint32) *Monotonic {
	if unit <= 0 {
		unit = time.Millisecond
	}
	return &Monotonic{
		start:  time.Now(),
		unit:   unit,
		offset: offset,
	}
}

// Ticks implements Source.
func (m *Monotonic) Ticks() uint32 {
	n := uint64(time.Since(m.start) / m.unit)
	return m.offset + uint32(n)
}

// Unit returns the duration of one tick.
func (m *Monotonic) Unit() time.Duration {
	return m.unit
}

// Manual is a counter moved only by its owner. Safe for concurrent use.
type Manual struct {
	ticks atomic.Uint32
}

// NewManual creates a Manual counter reading start.
func NewManual(start uint32) *Manual {
	m := &Manual{}
	m.ticks.Store(start)
	return m
}

// Ticks implements Source.
func (m *Manual) Ticks() uint32 {
	return m.ticks.Load()
}

// Set moves the counter to ticks.
func (m *Manual) Set(ticks uint32) {
	m.ticks.Store(ticks)
}

// Advance moves the counter forward by n, wrapping at the 32-bit maximum,
// and returns the new reading.
func (m *Manual) Advance(n uint32) uint32 {
	return m.ticks.Add(n)
}
