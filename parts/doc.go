// Package parts provides ready-made participants for the non-blocking jobs a
// control loop usually does with delays: blinking an output, firing a
// callback after a period, ramping a setpoint and integrating motion.
//
// All of them embed updatable.Base and are advanced with
//
//	reg.Register(part)
//	reg.Tick()
//
// Periods and rates are expressed in registry ticks (milliseconds with the
// default clock).
package parts
