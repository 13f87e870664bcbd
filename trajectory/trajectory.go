// Package trajectory converts a planned waypoint/blend/velocity profile
// into the concrete segment.Segment stream the executor integrates:
// a parabolic blend segment centered on each waypoint whose blend duration
// is nonzero, followed by a linear segment to the next blend.
package trajectory

import (
	"math"

	"github.com/nasa-jpl/stepperctl/axis"
	"github.com/nasa-jpl/stepperctl/segment"
)

// Compile emits the segment sequence for a planned path. dt holds the
// per-leg nominal durations in ticks (len n-1), tb holds the per-waypoint
// blend durations in ticks (len n), and v/a come from planner.Result,
// already expressed as step-space rates. Only v is read: each blend's
// shape follows from its two half displacements and its duration.
func Compile(waypoints []axis.Int32, dt, tb []int32, v, a []axis.Float) ([]segment.Segment, error) {
	n := len(waypoints)
	segs := make([]segment.Segment, 0, 2*n)

	pos := waypoints[0]
	for i := 0; i < n; i++ {
		if tb[i] > 0 {
			var prevV, nextV axis.Float
			if i > 0 {
				prevV = v[i-1]
			}
			if i < n-1 {
				nextV = v[i]
			}
			half := float64(tb[i]) / 2
			dx1 := halfDisplacement(prevV, half)
			dx2 := halfDisplacement(nextV, half)

			// dx1 and dx2 are rounded independently and the blend duration
			// is not adjusted afterwards; NewParabolic rejects a blend whose
			// rounded displacements exceed its rate bound.
			seg, err := segment.NewParabolic(tb[i], dx1, dx2)
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)
			pos = axis.AddInt32(pos, axis.AddInt32(dx1, dx2))
		}

		if i == n-1 {
			break
		}

		// remaining straight-line duration after subtracting the blend
		// half-widths already consumed at each end.
		lineDur := float64(dt[i]) - float64(tb[i])/2 - float64(tb[i+1])/2
		tLine := truncTowardInf(lineDur)
		if tLine <= 0 {
			continue
		}
		target := waypoints[i+1]
		// back off the incoming blend's half-width on the far end too.
		remaining := axis.SubInt32(target, pos)
		nextHalf := halfDisplacement(v[i], float64(tb[i+1])/2)
		lineDx := axis.SubInt32(remaining, nextHalf)
		seg, err := segment.NewLinear(tLine, lineDx)
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
		pos = axis.AddInt32(pos, lineDx)
	}

	return segs, nil
}

// halfDisplacement is the distance covered at the constant leg velocity v0
// over half a blend, rounded to the nearest integer step count, matching
// the firmware's lround quantization of blend half-widths. The linear
// segments subtract the same amounts, so the steps of a leg add up to the
// leg's displacement.
func halfDisplacement(v0 axis.Float, half float64) axis.Int32 {
	var d axis.Float
	for j := 0; j < axis.Count; j++ {
		d[j] = v0[j] * half
	}
	return axis.LRound(d)
}

// truncTowardInf rounds away from zero: ceil for positive values, floor
// for negative, so the executor never under-runs a commanded distance.
func truncTowardInf(x float64) int32 {
	if x >= 0 {
		return int32(math.Ceil(x))
	}
	return int32(math.Floor(x))
}
