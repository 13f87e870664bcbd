// Package gcode implements a single-line, single-pass recursive-descent
// parser for the controller's G-code-like command grammar.
package gcode

import (
	"math"
	"strconv"
	"strings"

	"github.com/nasa-jpl/stepperctl/axis"
	"github.com/nasa-jpl/stepperctl/command"
)

// ParseError reports a failure to parse a line, carrying the byte offset
// of the first bad token and the original line for diagnostics.
type ParseError struct {
	Offset int
	Line   string
	Msg    string
}

func (e *ParseError) Error() string {
	return "gcode: " + e.Msg + " at offset " + strconv.Itoa(e.Offset) + " in " + strconv.Quote(e.Line)
}

// Sink receives callbacks for parsed commands and directives that are not
// themselves commands (mode changes, immediate controls).
type Sink interface {
	Move(command.Move)
	Wait(command.Wait)
	Homing(command.Homing)
	SetDistanceMode(command.DistanceMode)
	Start()
	Stop()
	ClearCommandsBuffer()
	QueryPosition()
	PrintInfo()
	PrintAxisNames()
	Feedrate(float64) // accepted, intentionally a no-op: parity with upstream

	// OverrideXxx apply M100-M106's live configuration overrides. Axes
	// left at +Inf in values are unmentioned and keep their prior value.
	OverrideMaxVel(values axis.Float)
	OverrideMaxAcc(values axis.Float)
	OverrideStepsPerUnit(values axis.Float)
	OverrideHomingVel(values axis.Float)
	OverrideMinPos(values axis.Float)
	OverrideMaxPos(values axis.Float)
}

type parser struct {
	line string
	pos  int
	sink Sink
}

// ParseLine parses a single line of input and drives sink accordingly. On
// a grammar error it stops at the first bad token and returns a
// *ParseError; the sink has already received any commands parsed before
// the error.
func ParseLine(line string, sink Sink) error {
	p := &parser{line: line, sink: sink}
	p.skipSpace()
	for p.pos < len(p.line) {
		if err := p.statement(); err != nil {
			return err
		}
		p.skipSpace()
	}
	return nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.line) && (p.line[p.pos] == ' ' || p.line[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) errorf(msg string) error {
	return &ParseError{Offset: p.pos, Line: p.line, Msg: msg}
}

func (p *parser) statement() error {
	c := p.line[p.pos]
	switch c {
	case 'G':
		return p.gCommand()
	case 'M':
		return p.mCommand()
	case '~':
		p.pos++
		p.sink.Start()
		return nil
	case '!':
		p.pos++
		p.sink.Stop()
		return nil
	case '^':
		p.pos++
		p.sink.ClearCommandsBuffer()
		return nil
	case '?':
		p.pos++
		p.sink.QueryPosition()
		return nil
	case 'F':
		f, err := p.number()
		if err != nil {
			return err
		}
		p.sink.Feedrate(f)
		return nil
	default:
		return p.errorf("unexpected token '" + string(c) + "'")
	}
}

func (p *parser) gCommand() error {
	p.pos++ // consume 'G'
	n, err := p.integer()
	if err != nil {
		return err
	}
	switch n {
	case 0, 1:
		return p.linearMove()
	case 4:
		return p.dwell()
	case 28:
		return p.homing()
	case 90:
		p.sink.SetDistanceMode(command.Absolute)
		return nil
	case 91:
		p.sink.SetDistanceMode(command.Relative)
		return nil
	default:
		return p.errorf("unknown G command G" + strconv.Itoa(n))
	}
}

func (p *parser) mCommand() error {
	p.pos++ // consume 'M'
	n, err := p.integer()
	if err != nil {
		return err
	}
	switch n {
	case 100:
		v, err := p.axisFloats()
		if err != nil {
			return err
		}
		p.sink.OverrideMaxVel(v)
	case 101:
		v, err := p.axisFloats()
		if err != nil {
			return err
		}
		p.sink.OverrideMaxAcc(v)
	case 102:
		v, err := p.axisFloats()
		if err != nil {
			return err
		}
		p.sink.OverrideStepsPerUnit(v)
	case 103:
		v, err := p.axisFloats()
		if err != nil {
			return err
		}
		p.sink.OverrideHomingVel(v)
	case 104:
		p.sink.PrintInfo()
	case 105:
		v, err := p.axisFloats()
		if err != nil {
			return err
		}
		p.sink.OverrideMinPos(v)
	case 106:
		v, err := p.axisFloats()
		if err != nil {
			return err
		}
		p.sink.OverrideMaxPos(v)
	case 110:
		p.sink.PrintAxisNames()
	default:
		return p.errorf("unknown M command M" + strconv.Itoa(n))
	}
	return nil
}

// axisFloats parses zero or more "<axis letter><number>" pairs, returning
// a vector with +Inf on every axis not mentioned.
func (p *parser) axisFloats() (axis.Float, error) {
	out := axis.InfFloat()
	for {
		p.skipSpace()
		if p.pos >= len(p.line) {
			break
		}
		idx, ok := axis.AxisIndex(p.line[p.pos])
		if !ok {
			break
		}
		p.pos++
		f, err := p.number()
		if err != nil {
			return out, err
		}
		out[idx] = f
	}
	return out, nil
}

func (p *parser) linearMove() error {
	move := command.Move{TargetPos: axis.InfFloat(), MaxVel: axis.InfFloat(), MaxAcc: axis.InfFloat()}
	for {
		p.skipSpace()
		if p.pos >= len(p.line) {
			break
		}
		c := p.line[p.pos]
		idx, ok := axis.AxisIndex(c)
		if ok {
			p.pos++
			f, err := p.number()
			if err != nil {
				return err
			}
			move.TargetPos[idx] = f
			continue
		}
		if c == 'F' {
			p.pos++
			f, err := p.number()
			if err != nil {
				return err
			}
			for i := range move.MaxVel {
				move.MaxVel[i] = f
			}
			continue
		}
		break
	}
	p.sink.Move(move)
	return nil
}

func (p *parser) dwell() error {
	p.skipSpace()
	if p.pos < len(p.line) && p.line[p.pos] == 'P' {
		p.pos++
	}
	f, err := p.number()
	if err != nil {
		return err
	}
	p.sink.Wait(command.Wait{Seconds: f})
	return nil
}

func (p *parser) homing() error {
	h := command.Homing{Velocity: axis.ZeroFloat()}
	for {
		p.skipSpace()
		if p.pos >= len(p.line) {
			break
		}
		c := p.line[p.pos]
		idx, ok := axis.AxisIndex(c)
		if !ok {
			break
		}
		p.pos++
		f, err := p.number()
		if err != nil {
			return err
		}
		h.Velocity[idx] = f
	}
	p.sink.Homing(h)
	return nil
}

func (p *parser) integer() (int, error) {
	start := p.pos
	for p.pos < len(p.line) && p.line[p.pos] >= '0' && p.line[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 0, p.errorf("expected integer")
	}
	n, err := strconv.Atoi(p.line[start:p.pos])
	if err != nil {
		return 0, p.errorf("malformed integer")
	}
	return n, nil
}

func (p *parser) number() (float64, error) {
	p.skipSpace()
	start := p.pos
	if p.pos < len(p.line) && (p.line[p.pos] == '+' || p.line[p.pos] == '-') {
		p.pos++
	}
	digitsStart := p.pos
	for p.pos < len(p.line) && (isDigit(p.line[p.pos]) || p.line[p.pos] == '.') {
		p.pos++
	}
	if p.pos == digitsStart {
		return 0, p.errorf("expected number")
	}
	f, err := strconv.ParseFloat(p.line[start:p.pos], 64)
	if err != nil {
		return 0, p.errorf("malformed number")
	}
	return f, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// UnsetAxis is the sentinel used by the grammar for "axis not mentioned".
var UnsetAxis = math.Inf(1)

// TrimCRLF strips a trailing line terminator, the way a serial reader
// hands lines to the parser.
func TrimCRLF(s string) string { return strings.TrimRight(s, "\r\n") }
