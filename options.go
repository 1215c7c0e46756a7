package updatable

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/comalice/updatable/clock"
)

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the tick counter read by Tick.
func WithClock(src clock.Source) Option {
	return func(r *Registry) {
		r.clock = src
	}
}

// WithLogger sets the logger used for lifecycle messages.
// Without it the registry logs through slog.Default at call time.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithCapacity preallocates room for n participants.
func WithCapacity(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.slots = make([]slot, 0, n)
			r.order = make([]uint32, 0, n)
		}
	}
}

// WithID sets the registry identifier reported in logs and snapshots.
func WithID(id uuid.UUID) Option {
	return func(r *Registry) {
		r.id = id
	}
}
