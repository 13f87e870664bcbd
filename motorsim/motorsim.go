// Package motorsim provides an in-memory capability.Motor, the Go
// workstation analogue of this codebase's instrument mocks (e.g.
// newport.NewControllerMock) for development and testing without
// physical stepper hardware attached. Driving real GPIO step/dir lines
// is board-specific and out of scope for this corpus: no example repo
// here talks to raw GPIO.
package motorsim

import (
	"sync"

	"github.com/nasa-jpl/stepperctl/axis"
)

// Motor simulates step/direction lines and end switches entirely in
// memory, counting steps per axis and optionally tripping an end switch
// once a configured step count is reached during homing.
type Motor struct {
	mu sync.Mutex

	steps [axis.Count]int64
	dir   [axis.Count]bool

	// SwitchAt, if nonzero on an axis, trips EndSwitchHit once the
	// absolute step count on that axis reaches it. Zero means "never".
	SwitchAt [axis.Count]int64

	began, ended bool
}

// New returns a Motor with no switches configured.
func New() *Motor { return &Motor{} }

func (m *Motor) WriteStep(axis int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dir[axis] {
		m.steps[axis]++
	} else {
		m.steps[axis]--
	}
}

func (m *Motor) WriteDirection(axis int, positive bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dir[axis] = positive
}

func (m *Motor) EndSwitchHit(axis int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	limit := m.SwitchAt[axis]
	if limit == 0 {
		return false
	}
	s := m.steps[axis]
	if s < 0 {
		s = -s
	}
	return s >= limit
}

func (m *Motor) Begin() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.began = true
}

func (m *Motor) End() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ended = true
}

// Steps returns a snapshot of the per-axis step counters.
func (m *Motor) Steps() [axis.Count]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.steps
}
