// Package segment implements the executor's atomic unit of motion: a fixed
// number of ticks over which every axis advances along an extended
// Bresenham integer line, optionally ramping velocity linearly to express
// a parabolic blend.
package segment

import (
	"math"

	"github.com/pkg/errors"

	"github.com/nasa-jpl/stepperctl/axis"
)

// Segment is the data the real-time tick path integrates. Velocity is the
// Bresenham numerator, Denominator is the common Bresenham denominator,
// Acceleration is the per-tick change in Velocity, and Error is the
// running Bresenham accumulator, one per axis. For a linear segment
// Velocity/Denominator equals the average steps/tick rate directly; a
// parabolic segment ramps Velocity linearly across the blend, and since
// the numerator it integrates grows with elapsed ticks, the denominator
// must grow with the square of the blend duration to keep the resulting
// rate consistent (NewParabolic uses (2*Δt)^2, not 2*Δt).
//
// Dt < 0 flags a homing segment: the executor runs until every requested
// axis' end switch trips, rather than for a fixed tick count.
type Segment struct {
	Dt           int32
	Denominator  int64
	Velocity     axis.Int64
	Acceleration axis.Int32
	Error        axis.Int64
}

// Sentinel errors describing a construction-time invariant violation.
var (
	ErrNonPositiveDuration = errors.New("segment: duration must be positive")
	ErrStepRateTooHigh     = errors.New("segment: requested step rate exceeds the segment's rate limit")
	ErrOverflow            = errors.New("segment: displacement overflows int32")
)

// NewLinear builds a constant-velocity segment that moves by dx over dt
// ticks. Every axis must advance no more than one step every two ticks:
// |dx|*2 <= dt.
func NewLinear(dt int32, dx axis.Int32) (Segment, error) {
	if dt <= 0 {
		return Segment{}, ErrNonPositiveDuration
	}
	for i, d := range dx {
		if int64(absInt32(d))*2 > int64(dt) {
			return Segment{}, errors.Wrapf(ErrStepRateTooHigh, "axis %d: |%d|*2 > %d", i, d, dt)
		}
	}
	var s Segment
	s.Dt = dt
	s.Denominator = int64(dt)
	for i, d := range dx {
		s.Velocity[i] = int64(d)
	}
	return s, nil
}

// NewParabolic builds a velocity-ramping segment spanning twiceDt ticks,
// covering dx1 steps in the first half and dx2 steps in the second half.
// It implements the parabolic blend half of the trajectory by ramping the
// Bresenham numerator linearly across the segment instead of holding it
// constant. Because the numerator itself grows with elapsed ticks, the
// denominator must scale as twiceDt^2 to keep the integrated rate correct
// (a constant-velocity segment's denominator scales as dt^1 by contrast).
// Each half must individually satisfy |dx|*4 <= 2*twiceDt, which lets the
// rate at either end of the blend reach one step per tick.
func NewParabolic(twiceDt int32, dx1, dx2 axis.Int32) (Segment, error) {
	if twiceDt <= 0 {
		return Segment{}, ErrNonPositiveDuration
	}
	for i := range dx1 {
		if int64(absInt32(dx1[i]))*4 > int64(twiceDt)*2 {
			return Segment{}, errors.Wrapf(ErrStepRateTooHigh, "axis %d first half: |%d|*4 > %d", i, dx1[i], twiceDt*2)
		}
		if int64(absInt32(dx2[i]))*4 > int64(twiceDt)*2 {
			return Segment{}, errors.Wrapf(ErrStepRateTooHigh, "axis %d second half: |%d|*4 > %d", i, dx2[i], twiceDt*2)
		}
	}
	var s Segment
	s.Dt = twiceDt
	t := int64(twiceDt)
	s.Denominator = t * t
	for i := range dx1 {
		x1 := int64(dx1[i])
		x2 := int64(dx2[i])
		// acceleration ramps the numerator from one half's rate to the
		// other's; the (x2-x1) term is a half-step integration pre-offset
		// so the emitted step area matches the true integral rather than
		// a left-Riemann approximation of it.
		a := 2 * (x2 - x1)
		s.Acceleration[i] = int32(a)
		s.Velocity[i] = 2*t*x1 + (x2 - x1)
	}
	return s, nil
}

// NewWait builds a segment that holds position for dt ticks.
func NewWait(dt int32) (Segment, error) {
	if dt <= 0 {
		return Segment{}, ErrNonPositiveDuration
	}
	return Segment{Dt: dt, Denominator: int64(dt)}, nil
}

// homingDenominator is the shared Bresenham denominator homing segments
// integrate against.
const homingDenominator = 1 << 30

// NewHoming builds a homing segment: Dt is negative, signaling the
// executor to run until every nonzero axis in velocity trips its end
// switch. Velocity is quantized the same lossy way the board firmware
// does: it first rounds the reciprocal of v to an integer tick period,
// then derives the step rate from that rounded period rather than from v
// directly, so the per-tick Bresenham numerator loses precision for small
// |v| instead of tracking it exactly. This matches upstream firmware
// behavior and is preserved deliberately rather than corrected.
func NewHoming(velocity axis.Float) (Segment, error) {
	var s Segment
	s.Dt = -1
	s.Denominator = homingDenominator
	for i, v := range velocity {
		if v == 0 {
			continue
		}
		sign := int64(1)
		if v < 0 {
			sign = -1
		}
		period := int64(math.Round(1.0 / math.Abs(float64(v))))
		if period <= 0 {
			return Segment{}, errors.Wrapf(ErrOverflow, "axis %d homing velocity %g", i, v)
		}
		rate := homingDenominator / period
		s.Velocity[i] = sign * rate
	}
	return s, nil
}

func absInt32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
