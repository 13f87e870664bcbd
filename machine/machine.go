// Package machine wires a gcode.Sink-backed interp.Interpreter and an
// exec.Executor together behind the small, whole-machine capability
// interfaces diag.Machine expects.
package machine

import (
	"github.com/nasa-jpl/stepperctl/axis"
	"github.com/nasa-jpl/stepperctl/capability"
	"github.com/nasa-jpl/stepperctl/command"
	"github.com/nasa-jpl/stepperctl/exec"
	"github.com/nasa-jpl/stepperctl/gcode"
	"github.com/nasa-jpl/stepperctl/interp"
)

// Machine couples an Interpreter to its Executor and exposes the subset
// of behavior diag.Machine requires.
type Machine struct {
	Interp   *interp.Interpreter
	Executor *exec.Executor
	clock    *exec.SystemTicker
}

// New builds a Machine from a configuration and the hardware Motor it
// drives, using cfg.TicksPerSecond both for the executor's real-time tick
// rate and the interpreter's unit/steps-per-tick conversions.
func New(cfg interp.Config, motor capability.Motor, printer capability.Printer) *Machine {
	executor := exec.New(motor)
	it := interp.New(cfg, executor, printer)

	clock := &exec.SystemTicker{}
	period := int64(1e6 / cfg.TicksPerSecond)
	executor.OnStarted = func() { clock.AttachMicros(period, executor.Tick) }
	executor.OnStopped = func() { clock.Detach() }

	return &Machine{Interp: it, Executor: executor, clock: clock}
}

func (m *Machine) Start() error { m.Interp.Start(); return nil }
func (m *Machine) Stop() error  { m.Interp.Stop(); return nil }
func (m *Machine) Clear() error { m.Interp.ClearCommandsBuffer(); return nil }

// Position reports the current position in configured units.
func (m *Machine) Position() ([]float64, error) {
	unit := m.Interp.PositionUnits()
	return unit[:], nil
}

func (m *Machine) Running() (bool, error) { return m.Executor.Running(), nil }

func (m *Machine) Home() error {
	m.Interp.Homing(command.Homing{Velocity: axis.ZeroFloat()})
	m.Interp.Start()
	return nil
}

// SubmitLine parses one line of G-code and feeds it to the interpreter.
// A trailing GRBL-style "*nnnnn" checksum is validated and stripped
// first, so a line mangled in transit over a serial link is rejected
// before it ever reaches the parser. A parse error is returned to the
// caller rather than swallowed, so an HTTP submitter sees exactly what a
// serial client would.
func (m *Machine) SubmitLine(line string) error {
	stripped, err := gcode.StripChecksum(gcode.TrimCRLF(line))
	if err != nil {
		return err
	}
	return gcode.ParseLine(stripped, m.Interp)
}

// AxisNames returns the compiled-in axis letters.
func (m *Machine) AxisNames() string { return axis.Names }
