package loop

import (
	"github.com/comalice/updatable"
)

// processTick runs one dispatch pass and publishes its report.
func (r *Runner) processTick() {
	n := r.tickNum.Add(1)
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("loop: participant panicked", "registry", r.reg.ID().String(), "tick", n, "panic", rec)
		}
	}()

	delta, dispatched := r.reg.Tick()
	r.publish(Report{
		Tick:         n,
		Delta:        delta,
		Dispatched:   dispatched,
		Participants: r.reg.Len(),
	})
}

// runCall executes a queued Do function.
func (r *Runner) runCall(fn func(*updatable.Registry)) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("loop: queued call panicked", "registry", r.reg.ID().String(), "panic", rec)
		}
	}()
	fn(r.reg)
}

// publish drops the report when nobody is keeping up.
func (r *Runner) publish(rep Report) {
	if r.reports == nil {
		return
	}
	select {
	case r.reports <- rep:
	default:
	}
}
