// Package interp implements the Interpreter: it owns the machine's
// configuration, buffers commands fed to it by the gcode parser, and
// compiles them into an executor trajectory when told to start.
package interp

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/nasa-jpl/stepperctl/axis"
	"github.com/nasa-jpl/stepperctl/capability"
	"github.com/nasa-jpl/stepperctl/command"
	"github.com/nasa-jpl/stepperctl/exec"
	"github.com/nasa-jpl/stepperctl/planner"
	"github.com/nasa-jpl/stepperctl/segment"
	"github.com/nasa-jpl/stepperctl/trajectory"
)

// Config holds the per-axis physical calibration and limits. Any field
// may hold +Inf on an axis to mean "unbounded".
type Config struct {
	StepsPerUnit   axis.Float
	MaxVel         axis.Float
	MaxAcc         axis.Float
	HomingVel      axis.Float
	MinPos         axis.Float
	MaxPos         axis.Float
	TicksPerSecond float64
}

// Interpreter buffers parsed commands and, on Start, compiles them into a
// trajectory loaded into an exec.Executor.
type Interpreter struct {
	cfg      Config
	mode     command.DistanceMode
	buffer   []command.Command
	position axis.Float // unit-space position tracked across buffered moves

	executor *exec.Executor
	printer  capability.Printer

	Error func(error)
}

// New returns an Interpreter driving executor and reporting through
// printer.
func New(cfg Config, executor *exec.Executor, printer capability.Printer) *Interpreter {
	in := &Interpreter{
		cfg:      cfg,
		mode:     command.Absolute,
		executor: executor,
		printer:  printer,
	}
	executor.OnCompleted = func() { printer.PrintCompleted("Completed") }
	return in
}

// derived quantities: physical limits converted to steps/tick, with
// velocities clamped to maxStepRate (half a step per tick).
func (in *Interpreter) maxVelSteps() axis.Float {
	return in.toStepsPerTickClamped(in.cfg.MaxVel)
}

func (in *Interpreter) maxAccSteps() axis.Float {
	var a axis.Float
	for i := range a {
		if math.IsInf(in.cfg.MaxAcc[i], 1) {
			a[i] = math.Inf(1)
			continue
		}
		v := in.cfg.MaxAcc[i] * in.cfg.StepsPerUnit[i] / (in.cfg.TicksPerSecond * in.cfg.TicksPerSecond)
		a[i] = v
	}
	return a
}

func (in *Interpreter) homingVelSteps() axis.Float {
	return in.toStepsPerTickClamped(in.cfg.HomingVel)
}

// maxStepRate is the fastest rate a segment can represent: the extended
// Bresenham format dedicates one numerator unit of headroom to the
// parabolic ramp, so a run of linear segments can step at most once every
// two ticks on any axis.
const maxStepRate = 0.5

func (in *Interpreter) toStepsPerTickClamped(unitPerSec axis.Float) axis.Float {
	var v axis.Float
	for i := range v {
		if math.IsInf(unitPerSec[i], 0) {
			v[i] = unitPerSec[i]
			continue
		}
		x := unitPerSec[i] * in.cfg.StepsPerUnit[i] / in.cfg.TicksPerSecond
		if x > maxStepRate {
			x = maxStepRate
		}
		if x < -maxStepRate {
			x = -maxStepRate
		}
		v[i] = x
	}
	return v
}

func (in *Interpreter) toSteps(unitPos axis.Float) axis.Int32 {
	var p axis.Float
	for i := range p {
		p[i] = unitPos[i] * in.cfg.StepsPerUnit[i]
	}
	return axis.LRound(p)
}

// --- gcode.Sink implementation ---

// Move buffers a move command, clamping its target into configured soft
// limits and accumulating unit-space position for relative moves. Axes
// left at +Inf in m.TargetPos are unmentioned and keep their prior value.
func (in *Interpreter) Move(m command.Move) {
	target := in.position
	if in.mode == command.Relative {
		for i, v := range m.TargetPos {
			if !math.IsInf(v, 0) {
				target[i] += v
			}
		}
	} else {
		axis.CopyOnlyFinite(&target, m.TargetPos)
	}
	target = axis.Clamp(target, in.cfg.MinPos, in.cfg.MaxPos)
	in.position = target

	m.TargetPos = target
	m.Mode = in.mode
	m.MaxVel = in.effectiveRate(m.MaxVel, in.cfg.MaxVel)
	m.MaxAcc = in.effectiveRate(m.MaxAcc, in.cfg.MaxAcc)
	in.buffer = append(in.buffer, m)
}

// Wait buffers a dwell command.
func (in *Interpreter) Wait(w command.Wait) { in.buffer = append(in.buffer, w) }

// Homing buffers a homing cycle and, once executed, resets tracked
// position to zero.
func (in *Interpreter) Homing(h command.Homing) {
	in.buffer = append(in.buffer, h)
	in.position = axis.ZeroFloat()
}

// SetDistanceMode switches between absolute and relative interpretation
// of subsequent Move targets.
func (in *Interpreter) SetDistanceMode(m command.DistanceMode) { in.mode = m }

// Start compiles the buffered commands into executor segments and begins
// execution.
func (in *Interpreter) Start() {
	segs, err := in.compile()
	if err != nil {
		if in.Error != nil {
			in.Error(errors.Wrap(err, "interp: compile"))
		}
		return
	}
	in.executor.SetTrajectory(segs)
	in.buffer = nil
	in.executor.Start()
}

// Stop halts the executor immediately.
func (in *Interpreter) Stop() { in.executor.Stop() }

// ClearCommandsBuffer discards any buffered, not-yet-started commands.
func (in *Interpreter) ClearCommandsBuffer() { in.buffer = nil }

// PositionUnits returns the executor's current position converted into
// configured units.
func (in *Interpreter) PositionUnits() axis.Float {
	pos := in.executor.Position()
	var unit axis.Float
	for i := range unit {
		unit[i] = float64(pos[i]) / in.cfg.StepsPerUnit[i]
	}
	return unit
}

// QueryPosition prints the current executor position, in units.
func (in *Interpreter) QueryPosition() {
	unit := in.PositionUnits()
	in.printer.PrintFloats("Position", unit[:])
}

// PrintInfo prints the multi-line machine status dump.
func (in *Interpreter) PrintInfo() {
	in.printer.PrintString(fmt.Sprintf("Max velocity: %v (%s)", in.cfg.MaxVel, axis.Names))
	in.printer.PrintString(fmt.Sprintf("Max acceleration: %v (%s)", in.cfg.MaxAcc, axis.Names))
	in.printer.PrintString(fmt.Sprintf("Homing velocity: %v (%s)", in.cfg.HomingVel, axis.Names))
	in.printer.PrintString(fmt.Sprintf("Commands (%d):", len(in.buffer)))
	for _, c := range in.buffer {
		switch v := c.(type) {
		case command.Move:
			in.printer.PrintString(fmt.Sprintf("  Move: %v", v.TargetPos))
		case command.Wait:
			in.printer.PrintString(fmt.Sprintf("  Wait: %g s", v.Seconds))
		case command.Homing:
			in.printer.PrintString(fmt.Sprintf("  Homing: %v", v.Velocity))
		}
	}
}

// PrintAxisNames prints the compiled-in axis letter string.
func (in *Interpreter) PrintAxisNames() { in.printer.PrintString(axis.Names) }

// Feedrate is accepted and intentionally ignored: the upstream grammar
// parses a feedrate override but never applies it to velocity scaling.
func (in *Interpreter) Feedrate(float64) {}

// OverrideMaxVel implements M100: live per-axis max-velocity override, in
// configured units/sec.
func (in *Interpreter) OverrideMaxVel(v axis.Float) {
	axis.CopyOnlyFinite(&in.cfg.MaxVel, v)
}

// OverrideMaxAcc implements M101: live per-axis max-acceleration override,
// in configured units/sec^2.
func (in *Interpreter) OverrideMaxAcc(v axis.Float) {
	axis.CopyOnlyFinite(&in.cfg.MaxAcc, v)
}

// OverrideStepsPerUnit implements M102: live per-axis calibration
// override. A negative value mirrors the axis; zero is rejected as
// unspecified, since it is not physically meaningful.
func (in *Interpreter) OverrideStepsPerUnit(v axis.Float) {
	for i := range v {
		if v[i] == 0 {
			v[i] = math.Inf(1)
		}
	}
	axis.CopyOnlyFinite(&in.cfg.StepsPerUnit, v)
}

// OverrideHomingVel implements M103: live per-axis homing-velocity
// override, in configured units/sec.
func (in *Interpreter) OverrideHomingVel(v axis.Float) {
	axis.CopyOnlyFinite(&in.cfg.HomingVel, v)
}

// OverrideMinPos implements M105: live per-axis soft lower-limit override,
// in configured units.
func (in *Interpreter) OverrideMinPos(v axis.Float) {
	axis.CopyOnlyFinite(&in.cfg.MinPos, v)
}

// OverrideMaxPos implements M106: live per-axis soft upper-limit override,
// in configured units.
func (in *Interpreter) OverrideMaxPos(v axis.Float) {
	axis.CopyOnlyFinite(&in.cfg.MaxPos, v)
}

// compile runs the buffered command list through the path planner and
// trajectory compiler, flushing the rolling waypoint buffer whenever the
// active v/a limits change, a wait is buffered, or a homing cycle starts.
func (in *Interpreter) compile() ([]segment.Segment, error) {
	var segs []segment.Segment

	var waypoints []axis.Int32
	var curVel, curAcc axis.Float
	havePending := false

	pos := in.toSteps(in.startPosition())
	waypoints = append(waypoints, pos)

	flush := func() error {
		if len(waypoints) < 2 {
			waypoints = waypoints[len(waypoints)-1:]
			return nil
		}
		clean := planner.RemoveCloseWaypoints(waypoints, axis.ZeroInt32())
		plan, err := planner.Plan(clean, curVel, curAcc)
		if err != nil {
			return err
		}
		dt := make([]int32, len(plan.Dt))
		for i, d := range plan.Dt {
			dt[i] = int32(math.Ceil(d))
		}
		tb := make([]int32, len(plan.Tb))
		for i, t := range plan.Tb {
			tb[i] = int32(math.Round(t))
		}
		moved, err := trajectory.Compile(clean, dt, tb, plan.V, plan.A)
		if err != nil {
			return err
		}
		segs = append(segs, moved...)
		waypoints = waypoints[len(waypoints)-1:]
		return nil
	}

	for _, c := range in.buffer {
		switch v := c.(type) {
		case command.Move:
			// v.MaxVel and v.MaxAcc are in configured units (Move filled
			// unset axes from the configuration); the planner works in
			// steps/tick.
			vel := in.toStepsPerTickClamped(v.MaxVel)
			acc := in.maxAccSteps()
			for j := range acc {
				if !math.IsInf(v.MaxAcc[j], 1) {
					acc[j] = v.MaxAcc[j] * in.cfg.StepsPerUnit[j] / (in.cfg.TicksPerSecond * in.cfg.TicksPerSecond)
				}
			}
			if havePending && (vel != curVel || acc != curAcc) {
				if err := flush(); err != nil {
					return nil, err
				}
			}
			curVel, curAcc = vel, acc
			havePending = true
			waypoints = append(waypoints, in.toSteps(v.TargetPos))

		case command.Wait:
			if err := flush(); err != nil {
				return nil, err
			}
			havePending = false
			ticks := int32(math.Round(v.Seconds * in.cfg.TicksPerSecond))
			if ticks <= 0 {
				continue
			}
			seg, err := segment.NewWait(ticks)
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)

		case command.Homing:
			if err := flush(); err != nil {
				return nil, err
			}
			havePending = false
			seg, err := segment.NewHoming(in.toStepsPerTickClamped(v.Velocity))
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)
			waypoints = []axis.Int32{axis.ZeroInt32()}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return segs, nil
}

// effectiveRate substitutes cfgDefault on any axis requested left at +Inf.
func (in *Interpreter) effectiveRate(requested, cfgDefault axis.Float) axis.Float {
	out := cfgDefault
	axis.CopyOnlyFinite(&out, requested)
	return out
}

// startPosition is the unit-space position the very first buffered move
// is measured from: wherever the executor currently sits.
func (in *Interpreter) startPosition() axis.Float {
	pos := in.executor.Position()
	var u axis.Float
	for i := range u {
		u[i] = float64(pos[i]) / in.cfg.StepsPerUnit[i]
	}
	return u
}
