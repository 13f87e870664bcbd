package axis_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nasa-jpl/stepperctl/axis"
)

func TestAddSubFloat(t *testing.T) {
	a := axis.Float{1, 2, 3, 4, 5}
	b := axis.Float{5, 4, 3, 2, 1}
	sum := axis.AddFloat(a, b)
	want := axis.ConstFloat(6)
	if diff := cmp.Diff(want, sum); diff != "" {
		t.Errorf("AddFloat mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(a, axis.SubFloat(sum, b)); diff != "" {
		t.Errorf("SubFloat did not invert AddFloat (-want +got):\n%s", diff)
	}
}

func TestLRound(t *testing.T) {
	in := axis.Float{1.4, 1.5, -1.5, -1.4, 2.5}
	got := axis.LRound(in)
	want := axis.Int32{1, 2, -2, -1, 3}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LRound mismatch (-want +got):\n%s", diff)
	}
}

func TestCopyOnlyFinite(t *testing.T) {
	dst := axis.Float{1, 2, 3, 4, 5}
	src := axis.InfFloat()
	src[1] = 99
	axis.CopyOnlyFinite(&dst, src)
	want := axis.Float{1, 99, 3, 4, 5}
	if diff := cmp.Diff(want, dst); diff != "" {
		t.Errorf("CopyOnlyFinite mismatch (-want +got):\n%s", diff)
	}
}

func TestClampPassesThroughInfiniteBounds(t *testing.T) {
	v := axis.ConstFloat(1000)
	lo := axis.ConstFloat(math.Inf(-1))
	hi := axis.ConstFloat(10)
	got := axis.Clamp(v, lo, hi)
	want := axis.ConstFloat(10)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Clamp mismatch (-want +got):\n%s", diff)
	}
}

func TestAnyAll(t *testing.T) {
	allTrue := axis.Bool{true, true, true, true, true}
	if !axis.All(allTrue) {
		t.Error("All should be true")
	}
	mixed := allTrue
	mixed[2] = false
	if axis.All(mixed) {
		t.Error("All should be false")
	}
	if !axis.Any(mixed) {
		t.Error("Any should be true")
	}
}

func TestAxisIndex(t *testing.T) {
	for i := 0; i < axis.Count; i++ {
		idx, ok := axis.AxisIndex(axis.Names[i])
		if !ok || idx != i {
			t.Errorf("AxisIndex(%c) = %d, %v; want %d, true", axis.Names[i], idx, ok, i)
		}
	}
	if _, ok := axis.AxisIndex('Q'); ok {
		t.Error("AxisIndex('Q') should not be found")
	}
}
