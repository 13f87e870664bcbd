// Package exec implements the real-time segment integrator: given a
// stream of segment.Segment values it drives a capability.Motor one tick
// at a time using extended Bresenham integer arithmetic, never allocating
// or touching floating point on the tick path.
package exec

import (
	"sync"

	"github.com/nasa-jpl/stepperctl/axis"
	"github.com/nasa-jpl/stepperctl/capability"
	"github.com/nasa-jpl/stepperctl/segment"
)

// Executor owns the current position and the segment queue, and advances
// both on every Tick call.
type Executor struct {
	motor capability.Motor

	mu       sync.Mutex
	position axis.Int32
	running  bool
	stopped  chan struct{}

	segs   []segment.Segment
	cursor int
	tick   int32 // ticks elapsed within the current segment

	dir    [axis.Count]bool // cached direction line state, avoids redundant writes
	dirSet [axis.Count]bool // whether dir[i] has been written at least once

	OnStarted   func()
	OnStopped   func()
	OnCompleted func()
}

// New returns an Executor driving motor.
func New(motor capability.Motor) *Executor {
	return &Executor{motor: motor}
}

// SetTrajectory replaces the pending segment queue. It must not be called
// while the executor is running.
func (e *Executor) SetTrajectory(segs []segment.Segment) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.segs = segs
	e.cursor = 0
	e.tick = 0
}

// Position returns the current step position.
func (e *Executor) Position() axis.Int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// SetPosition overrides the current step position, used after a homing
// cycle defines the origin.
func (e *Executor) SetPosition(p axis.Int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = p
}

// Running reports whether the executor is mid-trajectory.
func (e *Executor) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Start begins executing the current trajectory from its first segment.
func (e *Executor) Start() {
	e.mu.Lock()
	e.running = true
	e.cursor = 0
	e.tick = 0
	e.stopped = make(chan struct{})
	e.mu.Unlock()
	e.motor.Begin()
	if e.OnStarted != nil {
		e.OnStarted()
	}
}

// Stop halts execution immediately and notifies any waiter blocked on
// Wait.
func (e *Executor) Stop() {
	e.stop(false)
}

// stop is Stop's implementation. completed distinguishes a normal
// queue-exhaustion stop, which additionally fires OnCompleted, from an
// explicit interruption (user "!" or a backend error), which does not.
func (e *Executor) stop(completed bool) {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	stopped := e.stopped
	e.mu.Unlock()
	e.motor.End()
	if stopped != nil {
		close(stopped)
	}
	if e.OnStopped != nil {
		e.OnStopped()
	}
	if completed && e.OnCompleted != nil {
		e.OnCompleted()
	}
}

// Wait blocks until the executor transitions from running to stopped.
func (e *Executor) Wait() {
	e.mu.Lock()
	stopped := e.stopped
	e.mu.Unlock()
	if stopped != nil {
		<-stopped
	}
}

// Tick advances the executor by one tick. It is the only method intended
// to be called from the real-time tick source; it performs no allocation
// and touches no floating point.
func (e *Executor) Tick() {
	e.mu.Lock()

	if !e.running {
		e.mu.Unlock()
		return
	}
	if e.cursor >= len(e.segs) {
		e.mu.Unlock()
		e.stop(true)
		return
	}

	seg := &e.segs[e.cursor]

	if seg.Dt < 0 {
		e.tickHoming(seg)
		e.mu.Unlock()
		return
	}
	defer e.mu.Unlock()

	e.tickMotion(seg)

	e.tick++
	if e.tick >= seg.Dt {
		e.cursor++
		e.tick = 0
	}
}

// tickMotion performs one extended-Bresenham integration step for a
// linear or parabolic segment.
func (e *Executor) tickMotion(seg *segment.Segment) {
	for i := 0; i < axis.Count; i++ {
		vel := seg.Velocity[i]
		seg.Velocity[i] += int64(seg.Acceleration[i])

		sign := int64(1)
		if vel < 0 {
			sign = -1
		} else if vel == 0 {
			continue
		}

		e.updateDir(i, sign > 0)

		seg.Error[i] += vel
		if sign*seg.Error[i] >= seg.Denominator {
			seg.Error[i] -= seg.Denominator * sign
			e.position[i] += int32(sign)
			e.motor.WriteStep(i)
		}
	}
}

// tickHoming runs the homing branch: every axis with nonzero velocity
// steps toward its switch until that switch trips, at which point its
// velocity is zeroed. When every axis has stopped the segment completes
// and the position resets to the origin.
func (e *Executor) tickHoming(seg *segment.Segment) {
	anyMoving := false
	for i := 0; i < axis.Count; i++ {
		if seg.Velocity[i] == 0 {
			continue
		}
		if e.motor.EndSwitchHit(i) {
			seg.Velocity[i] = 0
			continue
		}
		anyMoving = true

		sign := int64(1)
		if seg.Velocity[i] < 0 {
			sign = -1
		}
		e.updateDir(i, sign > 0)

		seg.Error[i] += seg.Velocity[i]
		if sign*seg.Error[i] >= seg.Denominator {
			seg.Error[i] -= seg.Denominator * sign
			e.motor.WriteStep(i)
		}
	}
	if !anyMoving {
		e.position = axis.ZeroInt32()
		e.cursor++
		e.tick = 0
	}
}

func (e *Executor) updateDir(i int, positive bool) {
	if e.dirSet[i] && e.dir[i] == positive {
		return
	}
	e.dir[i] = positive
	e.dirSet[i] = true
	e.motor.WriteDirection(i, positive)
}
