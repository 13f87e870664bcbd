package config_test

import (
	"testing"

	"github.com/nasa-jpl/stepperctl/axis"
	"github.com/nasa-jpl/stepperctl/config"
)

func TestDefaultPopulatesEveryAxis(t *testing.T) {
	c := config.Default()
	if len(c.Axes) != axis.Count {
		t.Fatalf("Axes has %d entries, want %d", len(c.Axes), axis.Count)
	}
	for i := 0; i < axis.Count; i++ {
		letter := string(axis.Names[i])
		if _, ok := c.Axes[letter]; !ok {
			t.Errorf("missing axis %q in default config", letter)
		}
	}
}

func TestLoadFallsBackToDefaultsWhenFileMissing(t *testing.T) {
	c, err := config.Load("/nonexistent/path/stepperctld.yml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.TicksPerSecond != config.Default().TicksPerSecond {
		t.Errorf("TicksPerSecond = %g, want the default", c.TicksPerSecond)
	}
}

func TestToAxisVectorsOrdersByAxisNames(t *testing.T) {
	c := config.Default()
	c.Axes["X"] = config.Axis{StepsPerUnit: 400, MaxVel: 20, MaxAcc: 100, HomingVel: -4, MinPos: -10, MaxPos: 10}

	spu, maxVel, _, homingVel, minPos, maxPos := c.ToAxisVectors()
	idx, ok := axis.AxisIndex('X')
	if !ok {
		t.Fatal("axis 'X' not found in compiled-in axis set")
	}
	if spu[idx] != 400 || maxVel[idx] != 20 || homingVel[idx] != -4 || minPos[idx] != -10 || maxPos[idx] != 10 {
		t.Errorf("ToAxisVectors did not carry the X axis override through: spu=%v maxVel=%v homingVel=%v minPos=%v maxPos=%v",
			spu, maxVel, homingVel, minPos, maxPos)
	}
}
