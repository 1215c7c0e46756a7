package parts

import (
	"github.com/comalice/updatable"
)

// Interval calls Fn once Period ticks have accumulated, then either rearms
// (Repeat) or goes idle. A delta spanning several periods fires once and
// keeps the remainder, so a stalled loop does not cause a burst of calls.
type Interval struct {
	updatable.Base

	Period int64
	Repeat bool
	Fn     func()

	elapsed int64
	fired   int
	done    bool
}

// NewInterval creates an interval timer.
func NewInterval(period int64, repeat bool, fn func()) *Interval {
	return &Interval{Period: period, Repeat: repeat, Fn: fn}
}

// Update implements updatable.Participant.
func (i *Interval) Update(delta int64) {
	if i.done || i.Period <= 0 || delta <= 0 {
		return
	}
	i.elapsed += delta
	if i.elapsed < i.Period {
		return
	}
	i.elapsed %= i.Period
	i.fired++
	if !i.Repeat {
		i.done = true
	}
	if i.Fn != nil {
		i.Fn()
	}
}

// Fired returns how many times Fn ran.
func (i *Interval) Fired() int {
	return i.fired
}

// Done reports whether a one-shot interval has fired.
func (i *Interval) Done() bool {
	return i.done
}

// Restart clears the accumulated time and rearms a finished one-shot.
func (i *Interval) Restart() {
	i.elapsed = 0
	i.done = false
}
