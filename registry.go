package updatable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/comalice/updatable/clock"
)

// ErrReentrantDispatch is the panic value raised when UpdateAll or Tick is
// called while a dispatch pass on the same registry is running.
var ErrReentrantDispatch = errors.New("updatable: dispatch called from inside a dispatch pass")

type slot struct {
	p      Participant
	gen    uint32
	live   bool
	doomed bool // removal requested mid-pass, applied when the pass ends
}

// Registry owns the ordered set of participants and dispatches to them.
// The zero value is not usable; create one with New.
type Registry struct {
	id     uuid.UUID
	clock  clock.Source
	logger *slog.Logger

	slots   []slot
	free    []uint32
	order   []uint32 // slot indices in registration order
	pending []uint32

	dispatching bool
	passes      uint64

	// auto-delta state
	started bool
	last    uint32

	debug     bool
	broadcast bool
}

// New creates an empty registry. Without WithClock it reads a millisecond
// monotonic counter started at creation.
func New(opts ...Option) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	if r.id == uuid.Nil {
		r.id = uuid.New()
	}
	if r.clock == nil {
		r.clock = clock.NewMonotonic(time.Millisecond)
	}
	return r
}

// ID returns the registry identifier.
func (r *Registry) ID() uuid.UUID {
	return r.id
}

// Register appends p to the dispatch order and returns its handle.
//
// Registering the same participant twice is allowed and it is then updated
// twice per pass. If a debug broadcast has already happened, p adopts the
// broadcast mode. Registering during a pass is allowed; p is first visited on
// the next pass.
func (r *Registry) Register(p Participant) Handle {
	if p == nil {
		panic("updatable: Register of nil Participant")
	}

	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot{})
	}

	s := &r.slots[idx]
	s.gen++
	s.p = p
	s.live = true
	s.doomed = false
	r.order = append(r.order, idx)

	if r.broadcast {
		p.setDebugMode(r.debug)
	}

	h := Handle{index: idx, gen: s.gen}
	r.logDebug("updatable: registered", "handle", h, "participant", typeName(p))
	return h
}

// Deregister removes the registration addressed by h. It reports false for a
// zero, stale or already removed handle.
func (r *Registry) Deregister(h Handle) bool {
	if _, ok := r.lookup(h); !ok {
		return false
	}
	r.release(h.index)
	return true
}

// Remove removes the first registration of p, in dispatch order.
// It reports false if p is not registered. Participants are compared by
// interface equality, so they are expected to be pointers.
func (r *Registry) Remove(p Participant) bool {
	for _, idx := range r.order {
		s := &r.slots[idx]
		if s.live && !s.doomed && s.p == p {
			r.release(idx)
			return true
		}
	}
	return false
}

// Contains reports whether h addresses a current registration.
func (r *Registry) Contains(h Handle) bool {
	_, ok := r.lookup(h)
	return ok
}

// Participant returns the participant registered under h.
func (r *Registry) Participant(h Handle) (Participant, bool) {
	s, ok := r.lookup(h)
	if !ok {
		return nil, false
	}
	return s.p, true
}

// Len returns the number of current registrations.
func (r *Registry) Len() int {
	return len(r.order) - len(r.pending)
}

// Passes returns the number of dispatch passes run so far.
func (r *Registry) Passes() uint64 {
	return r.passes
}

// UpdateAll calls Update(delta) on every participant registered when the
// call starts, once each, in registration order. The clock is not read.
func (r *Registry) UpdateAll(delta int64) {
	if r.dispatching {
		panic(ErrReentrantDispatch)
	}
	r.dispatching = true
	defer r.endPass()

	n := len(r.order)
	for i := 0; i < n; i++ {
		s := &r.slots[r.order[i]]
		if s.doomed {
			continue
		}
		s.p.Update(delta)
	}
}

// Tick reads the clock and dispatches the time elapsed since the previous
// Tick. The first Tick, and the first after Reset, only records the clock
// reading and dispatches nothing; it returns false.
func (r *Registry) Tick() (delta uint32, dispatched bool) {
	if r.dispatching {
		panic(ErrReentrantDispatch)
	}

	now := r.clock.Ticks()
	if !r.started {
		r.started = true
		r.last = now
		r.logDebug("updatable: clock baseline recorded", "ticks", now)
		return 0, false
	}

	delta = clock.Elapsed(r.last, now)
	r.last = now
	r.UpdateAll(int64(delta))
	return delta, true
}

// Reset forgets the clock baseline so the next Tick starts over. Useful when
// the host loop resumes after a pause that should not be dispatched.
func (r *Registry) Reset() {
	r.started = false
	r.last = 0
}

// SetDebugMode sets the debug flag of every registered participant to mode.
// Participants registered afterwards adopt mode as well.
func (r *Registry) SetDebugMode(mode bool) {
	for _, idx := range r.order {
		s := &r.slots[idx]
		if s.doomed {
			continue
		}
		s.p.setDebugMode(mode)
	}
	r.debug = mode
	r.broadcast = true
	r.logDebug("updatable: debug mode broadcast", "mode", mode, "participants", r.Len())
}

// DebugMode returns the last broadcast mode, false if none happened.
func (r *Registry) DebugMode() bool {
	return r.debug
}

func (r *Registry) lookup(h Handle) (*slot, bool) {
	if h.gen == 0 || int(h.index) >= len(r.slots) {
		return nil, false
	}
	s := &r.slots[h.index]
	if !s.live || s.doomed || s.gen != h.gen {
		return nil, false
	}
	return s, true
}

func (r *Registry) release(idx uint32) {
	s := &r.slots[idx]
	if r.dispatching {
		s.doomed = true
		r.pending = append(r.pending, idx)
		r.logDebug("updatable: removal deferred until pass ends", "handle", Handle{index: idx, gen: s.gen})
		return
	}

	for i, o := range r.order {
		if o == idx {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.freeSlot(idx)
}

func (r *Registry) freeSlot(idx uint32) {
	s := &r.slots[idx]
	r.logDebug("updatable: deregistered", "handle", Handle{index: idx, gen: s.gen}, "participant", typeName(s.p))
	s.p = nil
	s.live = false
	s.doomed = false
	r.free = append(r.free, idx)
}

// endPass runs even if a participant panics, so the registry stays usable.
func (r *Registry) endPass() {
	r.dispatching = false
	r.passes++
	if len(r.pending) == 0 {
		return
	}

	kept := r.order[:0]
	for _, idx := range r.order {
		if !r.slots[idx].doomed {
			kept = append(kept, idx)
		}
	}
	r.order = kept

	for _, idx := range r.pending {
		r.freeSlot(idx)
	}
	r.pending = r.pending[:0]
}

func (r *Registry) logDebug(msg string, args ...any) {
	l := r.logger
	if l == nil {
		l = slog.Default()
	}
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.Debug(msg, append([]any{"registry", r.id.String()}, args...)...)
}

func typeName(p Participant) string {
	return fmt.Sprintf("%T", p)
}
