// Package command defines the tagged command variants produced by the
// gcode parser and consumed by the interpreter.
package command

import "github.com/nasa-jpl/stepperctl/axis"

// DistanceMode selects how Move.TargetPos is interpreted.
type DistanceMode int

const (
	// Absolute targets are measured from the origin.
	Absolute DistanceMode = iota
	// Relative targets are measured from the current position.
	Relative
)

func (m DistanceMode) String() string {
	if m == Relative {
		return "relative"
	}
	return "absolute"
}

// Move requests motion to TargetPos (or by TargetPos, under Relative mode).
// Axes holding +Inf in TargetPos are unchanged by this move; MaxVel/MaxAcc
// with +Inf on an axis mean "use the interpreter's configured default for
// that axis".
type Move struct {
	TargetPos axis.Float
	MaxVel    axis.Float
	MaxAcc    axis.Float
	Mode      DistanceMode
}

// Wait requests the executor idle for Seconds before resuming.
type Wait struct {
	Seconds float64
}

// Homing requests a homing cycle. Velocity holds a signed per-axis homing
// speed in configured units/s, which the interpreter converts to steps/tick
// when it compiles the cycle; a zero on an axis excludes it from the cycle.
type Homing struct {
	Velocity axis.Float
}

// Command is implemented by Move, Wait, and Homing. It carries no methods
// of its own; callers type-switch on the concrete variant.
type Command interface {
	isCommand()
}

func (Move) isCommand()   {}
func (Wait) isCommand()   {}
func (Homing) isCommand() {}
