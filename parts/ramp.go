package parts

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/comalice/updatable"
)

// Ramp moves Value toward Target by at most Rate per tick, e.g. a servo
// setpoint or a motor PWM duty.
type Ramp struct {
	updatable.Base

	Name   string
	Value  float64
	Target float64
	Rate   float64
}

// NewRamp creates a ramp starting at from.
func NewRamp(name string, from, target, rate float64) *Ramp {
	return &Ramp{Name: name, Value: from, Target: target, Rate: rate}
}

// Update implements updatable.Participant.
func (r *Ramp) Update(delta int64) {
	if r.Rate <= 0 || delta <= 0 {
		return
	}
	step := r.Rate * float64(delta)
	if r.Value < r.Target {
		r.Value = mgl64.Clamp(r.Value+step, r.Value, r.Target)
	} else {
		r.Value = mgl64.Clamp(r.Value-step, r.Target, r.Value)
	}
}

// Settled reports whether Value has reached Target.
func (r *Ramp) Settled() bool {
	return mgl64.FloatEqual(r.Value, r.Target)
}
