// Command stepperctld runs the stepper motion controller as an HTTP
// service, adapting the config-loading and subcommand structure of this
// codebase's other server binaries (run/help/mkconf/conf/version).
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	yml "gopkg.in/yaml.v2"

	"github.com/nasa-jpl/stepperctl/config"
	"github.com/nasa-jpl/stepperctl/console"
	"github.com/nasa-jpl/stepperctl/diag"
	"github.com/nasa-jpl/stepperctl/interp"
	"github.com/nasa-jpl/stepperctl/machine"
	"github.com/nasa-jpl/stepperctl/motorsim"
)

// Version is injected via -ldflags at build time.
var Version = "dev"

// ConfigFileName is the on-disk YAML override file.
const ConfigFileName = "stepperctld.yml"

func root() {
	fmt.Println(`stepperctld runs the stepper motion controller and exposes an HTTP interface to it.

Usage:
	stepperctld <command>

Commands:
	run
	help
	mkconf
	conf
	version`)
}

func help() {
	fmt.Println(`stepperctld reads its configuration from stepperctld.yml in the working directory.
Run mkconf to write out the default configuration, then edit it to match your hardware.`)
}

func mkconf() {
	c := config.Default()
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := yml.NewEncoder(f).Encode(c); err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c, err := config.Load(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	if err := yml.NewEncoder(os.Stdout).Encode(c); err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("stepperctld version %v\n", Version)
}

func run() {
	c, err := config.Load(ConfigFileName)
	if err != nil {
		log.Fatal(err)
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

	motor := motorsim.New()
	printer := console.New()
	m := machine.New(icfg, motor, printer)

	if _, err := config.Watch(ConfigFileName, func(config.Config) {
		log.Println("config file changed; restart stepperctld to apply changes to running axes")
	}); err != nil {
		log.Printf("config: watch disabled: %v", err)
	}

	mux := diag.NewRouter(m)
	log.Printf("now listening for requests at %s", c.ListenAddr)
	log.Fatal(http.ListenAndServe(c.ListenAddr, mux))
}

func main() {
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	switch strings.ToLower(args[1]) {
	case "help":
		help()
	case "mkconf":
		mkconf()
	case "conf":
		printconf()
	case "run":
		run()
	case "version":
		pversion()
	default:
		log.Fatal("unknown command")
	}
}
