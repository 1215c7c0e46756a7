package parts

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/comalice/updatable"
)

// DefaultScale converts millisecond ticks to seconds.
const DefaultScale = 1e-3

// Body is a point mass advanced with explicit Euler integration.
type Body struct {
	updatable.Base

	Name         string
	Position     mgl64.Vec3
	Velocity     mgl64.Vec3
	Acceleration mgl64.Vec3

	// Damping is the fraction of velocity lost per second.
	Damping float64
	// Scale is seconds per tick.
	Scale float64
	// Distance is the path length travelled so far.
	Distance float64
}

// NewBody creates a body at rest at pos.
func NewBody(name string, pos mgl64.Vec3) *Body {
	return &Body{Name: name, Position: pos, Scale: DefaultScale}
}

// Update implements updatable.Participant.
func (b *Body) Update(delta int64) {
	scale := b.Scale
	if scale == 0 {
		scale = DefaultScale
	}
	dt := float64(delta) * scale
	if dt <= 0 {
		return
	}

	b.Velocity = b.Velocity.Add(b.Acceleration.Mul(dt))
	if b.Damping > 0 {
		b.Velocity = b.Velocity.Mul(math.Max(0, 1-b.Damping*dt))
	}
	step := b.Velocity.Mul(dt)
	b.Position = b.Position.Add(step)
	b.Distance += step.Len()
}

// Speed returns the magnitude of the velocity.
func (b *Body) Speed() float64 {
	return b.Velocity.Len()
}
