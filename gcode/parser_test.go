package gcode_test

import (
	"math"
	"testing"

	"github.com/nasa-jpl/stepperctl/axis"
	"github.com/nasa-jpl/stepperctl/command"
	"github.com/nasa-jpl/stepperctl/gcode"
)

// recordingSink implements gcode.Sink, recording every callback it
// receives for assertions.
type recordingSink struct {
	moves       []command.Move
	waits       []command.Wait
	homings     []command.Homing
	modes       []command.DistanceMode
	started     int
	stopped     int
	cleared     int
	queried     int
	infoPrints  int
	namePrints  int
	feedrates   []float64
	maxVel      []axis.Float
	maxAcc      []axis.Float
	stepsPerUnt []axis.Float
	homingVel   []axis.Float
	minPos      []axis.Float
	maxPos      []axis.Float
}

func (s *recordingSink) Move(m command.Move)              { s.moves = append(s.moves, m) }
func (s *recordingSink) Wait(w command.Wait)               { s.waits = append(s.waits, w) }
func (s *recordingSink) Homing(h command.Homing)            { s.homings = append(s.homings, h) }
func (s *recordingSink) SetDistanceMode(m command.DistanceMode) { s.modes = append(s.modes, m) }
func (s *recordingSink) Start()                             { s.started++ }
func (s *recordingSink) Stop()                              { s.stopped++ }
func (s *recordingSink) ClearCommandsBuffer()                { s.cleared++ }
func (s *recordingSink) QueryPosition()                      { s.queried++ }
func (s *recordingSink) PrintInfo()                           { s.infoPrints++ }
func (s *recordingSink) PrintAxisNames()                      { s.namePrints++ }
func (s *recordingSink) Feedrate(f float64)                   { s.feedrates = append(s.feedrates, f) }
func (s *recordingSink) OverrideMaxVel(v axis.Float)          { s.maxVel = append(s.maxVel, v) }
func (s *recordingSink) OverrideMaxAcc(v axis.Float)          { s.maxAcc = append(s.maxAcc, v) }
func (s *recordingSink) OverrideStepsPerUnit(v axis.Float)    { s.stepsPerUnt = append(s.stepsPerUnt, v) }
func (s *recordingSink) OverrideHomingVel(v axis.Float)       { s.homingVel = append(s.homingVel, v) }
func (s *recordingSink) OverrideMinPos(v axis.Float)          { s.minPos = append(s.minPos, v) }
func (s *recordingSink) OverrideMaxPos(v axis.Float)          { s.maxPos = append(s.maxPos, v) }

func TestParseLineLinearMove(t *testing.T) {
	s := &recordingSink{}
	if err := gcode.ParseLine("G1 X10 Y-5.5 F2", s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.moves) != 1 {
		t.Fatalf("expected one move, got %d", len(s.moves))
	}
	m := s.moves[0]
	if m.TargetPos[1] != 10 || m.TargetPos[2] != -5.5 {
		t.Errorf("TargetPos = %v, want X=10 Y=-5.5", m.TargetPos)
	}
	if !math.IsInf(m.TargetPos[3], 1) {
		t.Errorf("unmentioned axis Z should stay +Inf, got %v", m.TargetPos[3])
	}
	if m.MaxVel[0] != 2 {
		t.Errorf("F should set MaxVel on every axis, got %v", m.MaxVel)
	}
}

func TestParseLineDwell(t *testing.T) {
	s := &recordingSink{}
	if err := gcode.ParseLine("G4 P1.5", s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.waits) != 1 || s.waits[0].Seconds != 1.5 {
		t.Fatalf("expected Wait{1.5}, got %v", s.waits)
	}
}

func TestParseLineHoming(t *testing.T) {
	s := &recordingSink{}
	if err := gcode.ParseLine("G28 X-0.5", s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.homings) != 1 {
		t.Fatalf("expected one homing command, got %d", len(s.homings))
	}
	if s.homings[0].Velocity[1] != -0.5 {
		t.Errorf("Velocity[1] = %g, want -0.5", s.homings[0].Velocity[1])
	}
	if s.homings[0].Velocity[2] != 0 {
		t.Errorf("unmentioned axis should default to 0 for homing, got %g", s.homings[0].Velocity[2])
	}
}

func TestParseLineDistanceMode(t *testing.T) {
	s := &recordingSink{}
	if err := gcode.ParseLine("G91", s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.modes) != 1 || s.modes[0] != command.Relative {
		t.Fatalf("expected Relative mode, got %v", s.modes)
	}
}

func TestParseLineImmediateControls(t *testing.T) {
	s := &recordingSink{}
	if err := gcode.ParseLine("~", s); err != nil || s.started != 1 {
		t.Fatalf("expected Start(), err=%v started=%d", err, s.started)
	}
	if err := gcode.ParseLine("!", s); err != nil || s.stopped != 1 {
		t.Fatalf("expected Stop(), err=%v stopped=%d", err, s.stopped)
	}
	if err := gcode.ParseLine("^", s); err != nil || s.cleared != 1 {
		t.Fatalf("expected ClearCommandsBuffer(), err=%v cleared=%d", err, s.cleared)
	}
	if err := gcode.ParseLine("?", s); err != nil || s.queried != 1 {
		t.Fatalf("expected QueryPosition(), err=%v queried=%d", err, s.queried)
	}
}

func TestParseLineOverrideCommands(t *testing.T) {
	s := &recordingSink{}
	cases := []string{"M100 X5", "M101 Y2", "M102 X200", "M103 X-2", "M105 X0", "M106 X100"}
	for _, line := range cases {
		if err := gcode.ParseLine(line, s); err != nil {
			t.Fatalf("%q: unexpected error: %v", line, err)
		}
	}
	if len(s.maxVel) != 1 || s.maxVel[0][1] != 5 {
		t.Errorf("M100 not recorded correctly: %v", s.maxVel)
	}
	if len(s.maxAcc) != 1 || s.maxAcc[0][2] != 2 {
		t.Errorf("M101 not recorded correctly: %v", s.maxAcc)
	}
	if len(s.stepsPerUnt) != 1 || s.stepsPerUnt[0][1] != 200 {
		t.Errorf("M102 not recorded correctly: %v", s.stepsPerUnt)
	}
	if len(s.homingVel) != 1 || s.homingVel[0][1] != -2 {
		t.Errorf("M103 not recorded correctly: %v", s.homingVel)
	}
	if len(s.minPos) != 1 || s.minPos[0][1] != 0 {
		t.Errorf("M105 not recorded correctly: %v", s.minPos)
	}
	if len(s.maxPos) != 1 || s.maxPos[0][1] != 100 {
		t.Errorf("M106 not recorded correctly: %v", s.maxPos)
	}
}

func TestParseLinePrintCommands(t *testing.T) {
	s := &recordingSink{}
	if err := gcode.ParseLine("M104", s); err != nil || s.infoPrints != 1 {
		t.Fatalf("expected PrintInfo(), err=%v infoPrints=%d", err, s.infoPrints)
	}
	if err := gcode.ParseLine("M110", s); err != nil || s.namePrints != 1 {
		t.Fatalf("expected PrintAxisNames(), err=%v namePrints=%d", err, s.namePrints)
	}
}

func TestParseLineUnknownGCommandReportsOffset(t *testing.T) {
	s := &recordingSink{}
	err := gcode.ParseLine("G99", s)
	if err == nil {
		t.Fatal("expected error for unknown G command")
	}
	perr, ok := err.(*gcode.ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if perr.Line != "G99" {
		t.Errorf("Line = %q, want %q", perr.Line, "G99")
	}
}

func TestParseLineUnexpectedTokenReportsError(t *testing.T) {
	s := &recordingSink{}
	if err := gcode.ParseLine("Q1", s); err == nil {
		t.Fatal("expected error for unrecognized token 'Q'")
	}
}

func TestParseLineMultipleStatements(t *testing.T) {
	s := &recordingSink{}
	if err := gcode.ParseLine("G90 G1 X1 ~", s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.modes) != 1 || len(s.moves) != 1 || s.started != 1 {
		t.Fatalf("expected one of each: modes=%d moves=%d started=%d", len(s.modes), len(s.moves), s.started)
	}
}

func TestStripChecksumValid(t *testing.T) {
	// 50232 is the XMODEM CRC16 of "G1 X10".
	line, err := gcode.StripChecksum("G1 X10*50232")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line != "G1 X10" {
		t.Errorf("line = %q, want %q", line, "G1 X10")
	}
}

func TestStripChecksumMismatch(t *testing.T) {
	if _, err := gcode.StripChecksum("G1 X10*1"); err == nil {
		t.Fatal("expected checksum mismatch error")
	}
}

func TestStripChecksumNoChecksumPassesThrough(t *testing.T) {
	line, err := gcode.StripChecksum("G1 X10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line != "G1 X10" {
		t.Errorf("line = %q, want unchanged", line)
	}
}

func TestTrimCRLF(t *testing.T) {
	if got := gcode.TrimCRLF("G1 X1\r\n"); got != "G1 X1" {
		t.Errorf("TrimCRLF = %q, want %q", got, "G1 X1")
	}
}
