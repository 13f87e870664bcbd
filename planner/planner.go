// Package planner implements the parabolic-blend path planner (Kunz &
// Stilman): given a sequence of waypoints and per-axis velocity/
// acceleration limits, it computes a blend duration and velocity/
// acceleration profile at every waypoint such that the path can be
// traversed without exceeding the limits on any axis.
package planner

import (
	"math"

	"github.com/pkg/errors"

	"github.com/nasa-jpl/stepperctl/axis"
)

// ErrTooFewWaypoints is returned when fewer than two waypoints are given.
var ErrTooFewWaypoints = errors.New("planner: need at least two waypoints")

// Result is the output of Plan: per-segment durations and velocities, and
// per-waypoint blend durations and accelerations.
type Result struct {
	// Dt[i] is the nominal duration of the straight segment between
	// waypoint i and waypoint i+1, length n-1.
	Dt []float64
	// Tb[i] is the blend duration centered on waypoint i, length n.
	// Tb[0] and Tb[n-1] are the accel/decel ramps at the path's ends.
	Tb []float64
	// V[i] is the velocity of the straight segment between waypoint i and
	// waypoint i+1, length n-1.
	V []axis.Float
	// A[i] is the acceleration used to blend through waypoint i, length n.
	A []axis.Float
}

const eps = 1e-6

// Plan computes blend durations and velocities for the path through
// waypoints subject to per-axis velocity and acceleration limits.
func Plan(waypoints []axis.Int32, vmax, amax axis.Float) (Result, error) {
	n := len(waypoints)
	if n < 2 {
		return Result{}, ErrTooFewWaypoints
	}

	dt := make([]float64, n-1)
	v := make([]axis.Float, n-1)
	for i := 0; i < n-1; i++ {
		delta := axis.SubInt32(waypoints[i+1], waypoints[i])
		deltaF := axis.Int32ToFloat(delta)
		maxDur := 0.0
		for j := 0; j < axis.Count; j++ {
			if vmax[j] == 0 {
				continue
			}
			d := math.Abs(deltaF[j]) / vmax[j]
			if d > maxDur {
				maxDur = d
			}
		}
		dt[i] = maxDur
		if maxDur > 0 {
			v[i] = axis.ScaleFloat(deltaF, 1/maxDur)
		}
	}

	tb := make([]float64, n)
	a := make([]axis.Float, n)
	for i := 0; i < n; i++ {
		var prevV, nextV axis.Float
		if i > 0 {
			prevV = v[i-1]
		}
		if i < n-1 {
			nextV = v[i]
		}
		dv := axis.SubFloat(nextV, prevV)
		maxDur := 0.0
		for j := 0; j < axis.Count; j++ {
			if amax[j] == 0 {
				continue
			}
			d := math.Abs(dv[j]) / amax[j]
			if d > maxDur {
				maxDur = d
			}
		}
		tb[i] = maxDur
		if maxDur > 0 {
			a[i] = axis.ScaleFloat(dv, 1/maxDur)
		}
	}

	// Slow-down-factor convergence: a blend at waypoint i must fit within
	// half the duration of each adjacent straight segment, or that segment
	// must be slowed down so it does.
	for {
		slowDown := make([]float64, n-1)
		for i := range slowDown {
			slowDown[i] = 1
		}
		numSlowed := 0
		for i := 0; i < n; i++ {
			limit := math.Inf(1)
			if i > 0 {
				limit = math.Min(limit, dt[i-1])
			}
			if i < n-1 {
				limit = math.Min(limit, dt[i])
			}
			limit /= 2
			if limit <= 0 || math.IsInf(limit, 1) {
				continue
			}
			if tb[i] > limit+eps {
				factor := math.Sqrt(limit / tb[i])
				if i > 0 && factor < slowDown[i-1] {
					slowDown[i-1] = factor
				}
				if i < n-1 && factor < slowDown[i] {
					slowDown[i] = factor
				}
				numSlowed++
			}
		}
		if numSlowed == 0 {
			break
		}
		for i := range dt {
			dt[i] /= slowDown[i]
			v[i] = axis.ScaleFloat(v[i], slowDown[i])
		}
		for i := 0; i < n; i++ {
			var prevV, nextV axis.Float
			if i > 0 {
				prevV = v[i-1]
			}
			if i < n-1 {
				nextV = v[i]
			}
			dv := axis.SubFloat(nextV, prevV)
			maxDur := 0.0
			for j := 0; j < axis.Count; j++ {
				if amax[j] == 0 {
					continue
				}
				d := math.Abs(dv[j]) / amax[j]
				if d > maxDur {
					maxDur = d
				}
			}
			tb[i] = maxDur
			if maxDur > 0 {
				a[i] = axis.ScaleFloat(dv, 1/maxDur)
			}
		}
	}

	return Result{Dt: dt, Tb: tb, V: v, A: a}, nil
}

// RemoveCloseWaypoints collapses adjacent waypoint pairs whose separation
// on every axis is within threshold, averaging the pair into a single
// point. The first and last waypoints are kept as given: an interior
// waypoint close to the first one is dropped rather than averaged into
// it, while an interior waypoint immediately preceding the last is still
// a candidate for collapsing into its predecessor.
func RemoveCloseWaypoints(waypoints []axis.Int32, threshold axis.Int32) []axis.Int32 {
	if len(waypoints) < 3 {
		out := make([]axis.Int32, len(waypoints))
		copy(out, waypoints)
		return out
	}
	out := make([]axis.Int32, 0, len(waypoints))
	out = append(out, waypoints[0])
	for i := 1; i < len(waypoints)-1; i++ {
		last := out[len(out)-1]
		if isCloseInt32(waypoints[i], last, threshold) {
			if len(out) == 1 {
				continue
			}
			var avg axis.Int32
			for j := 0; j < axis.Count; j++ {
				avg[j] = (waypoints[i][j] + last[j]) / 2
			}
			out[len(out)-1] = avg
			continue
		}
		out = append(out, waypoints[i])
	}
	out = append(out, waypoints[len(waypoints)-1])
	return out
}

// isCloseInt32 reports whether a and b are within threshold on every axis.
func isCloseInt32(a, b, threshold axis.Int32) bool {
	delta := axis.SubInt32(a, b)
	for j := 0; j < axis.Count; j++ {
		d := delta[j]
		if d < 0 {
			d = -d
		}
		if d > threshold[j] {
			return false
		}
	}
	return true
}
