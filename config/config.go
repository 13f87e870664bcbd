// Package config loads and hot-reloads the controller's configuration,
// layering struct defaults under an optional YAML override file the same
// way the rest of this codebase's server binaries do.
package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/pkg/errors"

	"github.com/nasa-jpl/stepperctl/axis"
)

// Axis holds the per-axis physical parameters read from YAML.
type Axis struct {
	StepsPerUnit float64 `koanf:"stepsperunit" yaml:"StepsPerUnit"`
	MaxVel       float64 `koanf:"maxvel" yaml:"MaxVel"`
	MaxAcc       float64 `koanf:"maxacc" yaml:"MaxAcc"`
	HomingVel    float64 `koanf:"homingvel" yaml:"HomingVel"`
	MinPos       float64 `koanf:"minpos" yaml:"MinPos"`
	MaxPos       float64 `koanf:"maxpos" yaml:"MaxPos"`
}

// Config is the root configuration struct for stepperctld/stepperctl.
type Config struct {
	SerialPort     string          `koanf:"serialport" yaml:"SerialPort"`
	Baud           int             `koanf:"baud" yaml:"Baud"`
	TicksPerSecond float64         `koanf:"tickspersecond" yaml:"TicksPerSecond"`
	ListenAddr     string          `koanf:"listenaddr" yaml:"ListenAddr"`
	Axes           map[string]Axis `koanf:"axes" yaml:"Axes"`
}

// Default returns the built-in configuration used when no YAML file is
// present: every configured axis at 200 steps/unit, 10 units/s max
// velocity and 50 units/s² max acceleration, ticking at 10kHz.
func Default() Config {
	axes := make(map[string]Axis, axis.Count)
	for i := 0; i < axis.Count; i++ {
		axes[string(axis.Names[i])] = Axis{
			StepsPerUnit: 200,
			MaxVel:       10,
			MaxAcc:       50,
			HomingVel:    -2,
			MinPos:       0,
			MaxPos:       100,
		}
	}
	return Config{
		SerialPort:     "/dev/ttyACM0",
		Baud:           115200,
		TicksPerSecond: 10000,
		ListenAddr:     ":8080",
		Axes:           axes,
	}
}

// Load layers path's YAML contents (if present) over Default() using
// koanf, the way cmd/multiserver's setupconfig did for the rest of this
// codebase's server binaries.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, errors.Wrap(err, "config: load defaults")
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !strings.Contains(err.Error(), "no such file") {
			return Config{}, errors.Wrapf(err, "config: load %s", path)
		}
	}
	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, errors.Wrap(err, "config: unmarshal")
	}
	return c, nil
}

// ToAxisVectors flattens the per-letter Axes map into the axis-indexed
// vectors the interpreter consumes, in axis.Names order. Axes missing from
// the map default to the zero Axis (an immovable, zero-range axis).
func (c Config) ToAxisVectors() (stepsPerUnit, maxVel, maxAcc, homingVel, minPos, maxPos axis.Float) {
	for i := 0; i < axis.Count; i++ {
		a := c.Axes[string(axis.Names[i])]
		stepsPerUnit[i] = a.StepsPerUnit
		maxVel[i] = a.MaxVel
		maxAcc[i] = a.MaxAcc
		homingVel[i] = a.HomingVel
		minPos[i] = a.MinPos
		maxPos[i] = a.MaxPos
	}
	return
}

// Watch hot-reloads path with onChange whenever the file is rewritten,
// using fsnotify the way the rest of this codebase's config tooling
// manages on-disk YAML files.
func Watch(path string, onChange func(Config)) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "config: new watcher")
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, errors.Wrapf(err, "config: watch %s", path)
	}
	go func() {
		for event := range w.Events {
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			c, err := Load(path)
			if err != nil {
				continue
			}
			onChange(c)
		}
	}()
	return w, nil
}
