// Package updatable implements a cooperative per-tick update registry for
// control loops.
//
// Participants are registered once, and a single driver call advances every
// registered participant by the time elapsed since the previous call. This
// replaces chains of blocking delays and manual polling with one uniform
// Update hook:
//
//	reg := updatable.New()
//	led := &Blinker{Period: 250}
//	reg.Register(led)
//	for {
//		reg.Tick() // reads the clock, calls led.Update(elapsed)
//		// ... other non-blocking work
//	}
//
// # Dispatch
//
// UpdateAll forwards a caller supplied delta to every participant in
// registration order. Tick derives the delta from a clock.Source: the first
// call only records a baseline, later calls dispatch now-last using unsigned
// modular subtraction, so a counter wrapping past its maximum still produces
// the short forward interval.
//
// # Lifecycle
//
// Registration is explicit and two-phase: construct the participant, then
// hand it to Register, which returns a Handle. Deregister (by handle) or
// Remove (by identity) takes it out again. Removals requested while a
// dispatch pass is running are deferred until the pass ends and the removed
// participant is not visited for the rest of that pass. Participants
// registered mid-pass are first visited on the next pass.
//
// # Concurrency
//
// A Registry is single-threaded by design and performs no locking. All calls
// must come from the goroutine that drives it. Use loop.Runner.Do to mutate a
// registry owned by a running loop from another goroutine.
//
// Update must not block and must not dispatch. Calling UpdateAll or Tick from
// inside Update panics with ErrReentrantDispatch.
package updatable

// Participant is anything advanced once per dispatch pass.
//
// Implementations embed Base, which supplies the debug flag and a no-op
// Update, and override Update. delta is the time elapsed since the previous
// pass, in the unit of the registry's clock (or whatever the caller of
// UpdateAll chose).
type Participant interface {
	Update(delta int64)
	DebugMode() bool

	// setDebugMode is only reachable through Base, so the flag can only be
	// written by a registry broadcast.
	setDebugMode(mode bool)
}

// Base is embedded by every Participant. Its zero value has debug mode off.
type Base struct {
	debug bool
}

// Update does nothing. Embedding types override it.
func (b *Base) Update(delta int64) {}

// DebugMode reports the flag last broadcast by the registry.
func (b *Base) DebugMode() bool {
	return b.debug
}

func (b *Base) setDebugMode(mode bool) {
	b.debug = mode
}

// Func adapts an ordinary function to a Participant.
type Func struct {
	Base
	fn func(delta int64)
}

// NewFunc returns a participant calling fn on every pass.
func NewFunc(fn func(delta int64)) *Func {
	return &Func{fn: fn}
}

// Update calls the wrapped function.
func (f *Func) Update(delta int64) {
	if f.fn != nil {
		f.fn(delta)
	}
}
