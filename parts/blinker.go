package parts

import (
	"log/slog"

	"github.com/comalice/updatable"
)

// Blinker toggles On every Period ticks.
type Blinker struct {
	updatable.Base

	Name    string
	Period  int64
	On      bool
	Toggles int64

	elapsed int64
	logger  *slog.Logger
}

// NewBlinker creates a blinker. logger receives a line per toggle while the
// registry has debug mode on; nil uses slog.Default.
func NewBlinker(name string, period int64, logger *slog.Logger) *Blinker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Blinker{Name: name, Period: period, logger: logger}
}

// Update implements updatable.Participant.
func (b *Blinker) Update(delta int64) {
	if b.Period <= 0 || delta <= 0 {
		return
	}
	b.elapsed += delta
	n := b.elapsed / b.Period
	if n == 0 {
		return
	}
	b.elapsed %= b.Period
	b.Toggles += n
	if n%2 == 1 {
		b.On = !b.On
	}
	if b.DebugMode() && b.logger != nil {
		b.logger.Debug("parts: blinker toggled", "name", b.Name, "on", b.On, "toggles", b.Toggles)
	}
}
