// Command stepperctl is an interactive console for the stepper motion
// controller: it reads G-code lines from stdin, feeds them to a local
// machine.Machine, and prints a progress spinner while a homing cycle is
// in flight.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/theckman/yacspin"

	"github.com/nasa-jpl/stepperctl/config"
	"github.com/nasa-jpl/stepperctl/console"
	"github.com/nasa-jpl/stepperctl/gcode"
	"github.com/nasa-jpl/stepperctl/interp"
	"github.com/nasa-jpl/stepperctl/machine"
	"github.com/nasa-jpl/stepperctl/motorsim"
)

func main() {
	c := config.Default()
	if loaded, err := config.Load("stepperctld.yml"); err == nil {
		c = loaded
	}
	spu, maxVel, maxAcc, homingVel, minPos, maxPos := c.ToAxisVectors()
	icfg := interp.Config{
		StepsPerUnit:   spu,
		MaxVel:         maxVel,
		MaxAcc:         maxAcc,
		HomingVel:      homingVel,
		MinPos:         minPos,
		MaxPos:         maxPos,
		TicksPerSecond: c.TicksPerSecond,
	}

	printer := console.New()
	motor := motorsim.New()
	m := machine.New(icfg, motor, printer)
	m.Interp.Error = printer.PrintError

	spinner, err := yacspin.New(yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[9],
		Suffix:          " homing",
		SuffixAutoColon: true,
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("stepperctl ready. Enter G-code lines, Ctrl-D to exit.")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := gcode.TrimCRLF(scanner.Text())
		if line == "" {
			continue
		}
		homing := strings.HasPrefix(line, "G28")
		if err := m.SubmitLine(line); err != nil {
			printer.PrintError(err)
			continue
		}
		if homing {
			// the interactive console cycle-starts a homing line
			// immediately, rather than requiring a separate "~".
			spinner.Start()
			m.Interp.Start()
			for m.Executor.Running() {
				time.Sleep(10 * time.Millisecond)
			}
			spinner.Stop()
			printer.PrintCompleted("homing complete")
		}
	}
}
