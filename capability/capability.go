// Package capability defines the hardware-facing interfaces the executor
// and interpreter drive: the stepper driver itself, the tick source, and
// the diagnostic line printer.
package capability

// Motor is the hardware abstraction the executor drives from its
// real-time tick path. Implementations must not allocate or block.
type Motor interface {
	// WriteStep pulses the step line for the given axis index.
	WriteStep(axis int)
	// WriteDirection sets the direction line for the given axis index.
	WriteDirection(axis int, positive bool)
	// EndSwitchHit reports whether the given axis' homing end switch is
	// currently tripped.
	EndSwitchHit(axis int) bool
	// Begin is called once before the first tick of a run.
	Begin()
	// End is called once after the executor stops.
	End()
}

// Ticker drives the executor's Tick method at a fixed rate.
type Ticker interface {
	// AttachMicros arranges for fn to be called every period microseconds
	// until Detach is called.
	AttachMicros(period int64, fn func())
	// Detach stops calling the function registered with AttachMicros.
	Detach()
}

// Printer is the diagnostic output surface for interpreter feedback:
// position reports, status dumps, and error messages.
type Printer interface {
	PrintFloats(label string, values []float64)
	PrintInts(label string, values []int32)
	PrintString(s string)
	// PrintCompleted reports that a run finished: msg is the completion
	// banner text (the bare "Completed" on normal queue exhaustion, or a
	// more specific message such as "homing complete").
	PrintCompleted(msg string)
}
