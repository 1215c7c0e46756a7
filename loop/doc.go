// Package loop drives an updatable.Registry from a ticker on its own
// goroutine.
//
// On a microcontroller the host loop is simply
//
//	for {
//		reg.Tick()
//	}
//
// In a Go program the same registry is usually owned by a goroutine that
// wakes at a fixed rate. Runner is that goroutine:
//
//	reg := updatable.New()
//	rt := loop.NewRunner(reg, loop.Config{TickRate: time.Millisecond})
//	rt.Start(ctx)
//	defer rt.Stop()
//
// # Ownership
//
// Once started, the runner goroutine is the only code allowed to touch the
// registry. Other goroutines hand it work with Do, which queues a function
// to run on the loop goroutine between dispatch passes:
//
//	rt.Do(func(reg *updatable.Registry) {
//		reg.Register(newSensor())
//	})
//
// This keeps the registry single-threaded without adding locks to the
// dispatch path.
//
// # Failure handling
//
// A participant that panics does not stop the loop. The panic is recovered,
// logged with the tick number, and the next tick runs normally. The registry
// itself ends the interrupted pass cleanly.
//
// # Reports
//
// WithReports publishes a Report after every tick. Publication never blocks
// the loop; reports are dropped when the channel is full.
package loop
