package diag_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nasa-jpl/stepperctl/diag"
)

// fakeMachine implements diag.Machine entirely in memory, for exercising
// the HTTP layer without a real interpreter/executor pair.
type fakeMachine struct {
	started, stopped, cleared, homed bool
	running                          bool
	position                         []float64
	lastLine                         string
	submitErr                        error
}

func (f *fakeMachine) Start() error                  { f.started = true; return nil }
func (f *fakeMachine) Stop() error                    { f.stopped = true; return nil }
func (f *fakeMachine) Clear() error                   { f.cleared = true; return nil }
func (f *fakeMachine) Position() ([]float64, error)   { return f.position, nil }
func (f *fakeMachine) Running() (bool, error)         { return f.running, nil }
func (f *fakeMachine) Home() error                    { f.homed = true; return nil }
func (f *fakeMachine) SubmitLine(line string) error   { f.lastLine = line; return f.submitErr }
func (f *fakeMachine) AxisNames() string              { return "AXYZB" }

func TestNewRouterStartStopClear(t *testing.T) {
	m := &fakeMachine{}
	router := diag.NewRouter(m)

	for _, path := range []string{"/start", "/stop", "/clear"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, rec.Code)
		}
	}
	if !m.started || !m.stopped || !m.cleared {
		t.Errorf("expected all three to fire: started=%v stopped=%v cleared=%v", m.started, m.stopped, m.cleared)
	}
}

func TestNewRouterPosition(t *testing.T) {
	m := &fakeMachine{position: []float64{1, 2, 3, 4, 5}}
	router := diag.NewRouter(m)

	req := httptest.NewRequest(http.MethodGet, "/position", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Position []float64 `json:"position"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Position) != 5 || body.Position[2] != 3 {
		t.Errorf("position = %v, want [1 2 3 4 5]", body.Position)
	}
}

func TestNewRouterGCode(t *testing.T) {
	m := &fakeMachine{}
	router := diag.NewRouter(m)

	req := httptest.NewRequest(http.MethodPost, "/gcode", strings.NewReader(`{"line":"G1 X1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if m.lastLine != "G1 X1" {
		t.Errorf("lastLine = %q, want %q", m.lastLine, "G1 X1")
	}
}

func TestNewRouterEndpointsListsEveryRoute(t *testing.T) {
	m := &fakeMachine{}
	router := diag.NewRouter(m)

	req := httptest.NewRequest(http.MethodGet, "/endpoints", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var routes []string
	if err := json.NewDecoder(rec.Body).Decode(&routes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(routes) < 8 {
		t.Errorf("expected at least 8 routes (start/stop/clear/position/status/home/gcode/axes), got %d: %v", len(routes), routes)
	}
}
