// Package console implements capability.Printer for an interactive
// terminal session, color-coding position reports, status dumps, and
// errors.
package console

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/nasa-jpl/stepperctl/mathx"
)

// Printer writes interpreter feedback to stdout with ANSI color.
type Printer struct {
	position *color.Color
	info     *color.Color
	errColor *color.Color
	// Round, when nonzero, is the display rounding unit passed to
	// mathx.Round before printing floats (e.g. 1e-4 for four decimals).
	Round float64
}

// New returns a Printer using the conventional color scheme: cyan for
// position, default for informational text, red for errors.
func New() *Printer {
	return &Printer{
		position: color.New(color.FgCyan),
		info:     color.New(color.Reset),
		errColor: color.New(color.FgRed),
		Round:    1e-4,
	}
}

// PrintFloats prints a labeled row of floating point values.
func (p *Printer) PrintFloats(label string, values []float64) {
	parts := make([]string, len(values))
	for i, v := range values {
		if p.Round > 0 {
			v = mathx.Round(v, p.Round)
		}
		parts[i] = fmt.Sprintf("%g", v)
	}
	p.position.Printf("%s: %s\n", label, strings.Join(parts, ", "))
}

// PrintInts prints a labeled row of integer values.
func (p *Printer) PrintInts(label string, values []int32) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	p.position.Printf("%s: %s\n", label, strings.Join(parts, ", "))
}

// PrintString prints a plain informational line.
func (p *Printer) PrintString(s string) {
	p.info.Println(s)
}

// PrintError prints an error in red. Not part of capability.Printer, but
// used directly by the CLI for interpreter.Error callbacks.
func (p *Printer) PrintError(err error) {
	p.errColor.Printf("error: %v\n", err)
}

// PrintCompleted prints a green completion banner.
func (p *Printer) PrintCompleted(msg string) {
	color.New(color.FgGreen).Println(msg)
}
