// Package axis provides fixed-width, compile-time-sized vectors over the
// motor axes of a stepper-motor controller. Count and Names are the
// compile-time axis configuration: change them together to retarget the
// controller to a different number or naming of axes.
//
// Every operation here is a fixed unrolled loop over Count elements: no
// heap allocation, no reflection, safe to call from the real-time tick
// path.
package axis

import "math"

// Count is the number of independently driven axes compiled into this
// controller. Keep it small (<= 8) so vectors stay cheap to copy and the
// compiler can keep them in registers.
const Count = 5

// Names holds one letter per axis, in index order. G-code axis letters are
// looked up against this string.
const Names = "AXYZB"

// Float is a per-axis vector of floating point values: velocities,
// accelerations, and unit-space positions.
type Float [Count]float64

// Int32 is a per-axis vector of 32-bit integers: motor step positions and
// step deltas.
type Int32 [Count]int32

// Int64 is a per-axis vector of 64-bit integers: Bresenham velocity and
// error accumulators.
type Int64 [Count]int64

// Bool is a per-axis vector of booleans, the result of an element-wise
// comparison.
type Bool [Count]bool

// ZeroFloat returns the zero vector.
func ZeroFloat() Float { return Float{} }

// ConstFloat returns a vector with every axis set to v.
func ConstFloat(v float64) Float {
	var a Float
	for i := range a {
		a[i] = v
	}
	return a
}

// InfFloat returns a vector with every axis set to +Inf, the sentinel for
// "this axis was not mentioned on the command line".
func InfFloat() Float { return ConstFloat(math.Inf(1)) }

// ZeroInt32 returns the zero vector.
func ZeroInt32() Int32 { return Int32{} }

// AddFloat returns a+b.
func AddFloat(a, b Float) Float {
	var r Float
	for i := range r {
		r[i] = a[i] + b[i]
	}
	return r
}

// SubFloat returns a-b.
func SubFloat(a, b Float) Float {
	var r Float
	for i := range r {
		r[i] = a[i] - b[i]
	}
	return r
}

// MulFloat returns a*b, element-wise.
func MulFloat(a, b Float) Float {
	var r Float
	for i := range r {
		r[i] = a[i] * b[i]
	}
	return r
}

// DivFloat returns a/b, element-wise.
func DivFloat(a, b Float) Float {
	var r Float
	for i := range r {
		r[i] = a[i] / b[i]
	}
	return r
}

// ScaleFloat returns a*k.
func ScaleFloat(a Float, k float64) Float {
	var r Float
	for i := range r {
		r[i] = a[i] * k
	}
	return r
}

// AddInt32 returns a+b.
func AddInt32(a, b Int32) Int32 {
	var r Int32
	for i := range r {
		r[i] = a[i] + b[i]
	}
	return r
}

// SubInt32 returns a-b.
func SubInt32(a, b Int32) Int32 {
	var r Int32
	for i := range r {
		r[i] = a[i] - b[i]
	}
	return r
}

// AbsFloat returns the element-wise absolute value of a.
func AbsFloat(a Float) Float {
	var r Float
	for i := range r {
		r[i] = math.Abs(a[i])
	}
	return r
}

// AbsInt32 returns the element-wise absolute value of a.
func AbsInt32(a Int32) Int32 {
	var r Int32
	for i := range r {
		v := a[i]
		if v < 0 {
			v = -v
		}
		r[i] = v
	}
	return r
}

// Int32ToFloat casts an Int32 vector to Float, element-wise.
func Int32ToFloat(a Int32) Float {
	var r Float
	for i := range r {
		r[i] = float64(a[i])
	}
	return r
}

// Int32ToInt64 casts an Int32 vector to Int64, element-wise.
func Int32ToInt64(a Int32) Int64 {
	var r Int64
	for i := range r {
		r[i] = int64(a[i])
	}
	return r
}

// LRound rounds every element of a to the nearest integer, half away from
// zero, matching C's lround used throughout the original planner.
func LRound(a Float) Int32 {
	var r Int32
	for i := range r {
		r[i] = int32(math.Round(a[i]))
	}
	return r
}

// Lt returns a[i] < b[i] for every axis.
func Lt(a, b Float) Bool {
	var r Bool
	for i := range r {
		r[i] = a[i] < b[i]
	}
	return r
}

// Le returns a[i] <= b[i] for every axis.
func Le(a, b Float) Bool {
	var r Bool
	for i := range r {
		r[i] = a[i] <= b[i]
	}
	return r
}

// Gt returns a[i] > b[i] for every axis.
func Gt(a, b Float) Bool {
	var r Bool
	for i := range r {
		r[i] = a[i] > b[i]
	}
	return r
}

// Neq returns a[i] != b[i] for every axis.
func Neq(a, b Float) Bool {
	var r Bool
	for i := range r {
		r[i] = a[i] != b[i]
	}
	return r
}

// EqInt32 returns a[i] == b[i] for every axis.
func EqInt32(a, b Int32) Bool {
	var r Bool
	for i := range r {
		r[i] = a[i] == b[i]
	}
	return r
}

// All reports whether every element of a is true.
func All(a Bool) bool {
	for _, v := range a {
		if !v {
			return false
		}
	}
	return true
}

// Any reports whether any element of a is true.
func Any(a Bool) bool {
	for _, v := range a {
		if v {
			return true
		}
	}
	return false
}

// CopyOnlyFinite overwrites dst[i] with src[i] for every axis where src[i]
// is finite, leaving the rest of dst untouched. It implements the
// "unmentioned axes keep their previous value" convention used throughout
// the M command overrides.
func CopyOnlyFinite(dst *Float, src Float) {
	for i, v := range src {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			dst[i] = v
		}
	}
}

// Clamp returns v clamped to [lo, hi] for every axis where lo/hi are
// finite; axes with an infinite bound pass through unclamped.
func Clamp(v, lo, hi Float) Float {
	var r Float
	for i := range r {
		x := v[i]
		if !math.IsInf(lo[i], 0) && x < lo[i] {
			x = lo[i]
		}
		if !math.IsInf(hi[i], 0) && x > hi[i] {
			x = hi[i]
		}
		r[i] = x
	}
	return r
}

// ClampScalar clamps every element of v to [lo, hi].
func ClampScalar(v Float, lo, hi float64) Float {
	var r Float
	for i := range r {
		x := v[i]
		if x < lo {
			x = lo
		}
		if x > hi {
			x = hi
		}
		r[i] = x
	}
	return r
}

// AxisIndex returns the vector index of the named axis letter and true, or
// (-1, false) if name is not one of Names.
func AxisIndex(name byte) (int, bool) {
	for i := 0; i < Count; i++ {
		if Names[i] == name {
			return i, true
		}
	}
	return -1, false
}
