package updatable

import (
	"fmt"
	"log/slog"
)

// Handle addresses one registration in a Registry.
//
// A handle stays valid until its registration is removed. Slots are reused
// with a new generation, so an old handle never refers to a newer
// participant. The zero Handle is never valid.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h.gen == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("%d#%d", h.index, h.gen)
}

// LogValue implements slog.LogValuer.
func (h Handle) LogValue() slog.Value {
	return slog.StringValue(h.String())
}
