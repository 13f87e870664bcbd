/*Package diag exposes the controller's state over HTTP for diagnostics
and remote submission of G-code lines.

The shape follows the rest of this codebase's HTTP layer: one small
interface per capability (Starter, Stopper, ...), one HTTPXxx injector
function per capability that adds routes to a shared table, and a single
router assembled from the tables at startup. Where the per-axis
independent-capability pattern used elsewhere doesn't fit — these axes
move as one coordinated queue, not independently — the capabilities here
describe the machine as a whole instead.
*/
package diag

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi"

	"github.com/nasa-jpl/stepperctl/util"
)

// MethodPath keys a RouteTable entry by HTTP method and path template.
type MethodPath struct {
	Method, Path string
}

// RouteTable collects handlers to be bound onto a chi.Router.
type RouteTable map[MethodPath]http.HandlerFunc

// Bind registers every route in the table on mux.
func (rt RouteTable) Bind(mux chi.Router) {
	for mp, h := range rt {
		mux.MethodFunc(mp.Method, mp.Path, h)
	}
}

// Endpoints lists the table's routes as "METHOD /path" strings, deduped
// and sorted for stable output.
func (rt RouteTable) Endpoints() []string {
	routes := make([]string, 0, len(rt))
	for mp := range rt {
		routes = append(routes, mp.Method+" "+mp.Path)
	}
	routes = util.UniqueString(routes)
	sort.Strings(routes)
	return routes
}

// Starter begins executing the buffered trajectory.
type Starter interface{ Start() error }

// Stopper halts execution immediately.
type Stopper interface{ Stop() error }

// Clearer discards any buffered, not-yet-started commands.
type Clearer interface{ Clear() error }

// PositionQueryer reports the current position in configured units, one
// value per axis in axis.Names order.
type PositionQueryer interface{ Position() ([]float64, error) }

// StatusQueryer reports whether the executor is currently running.
type StatusQueryer interface{ Running() (bool, error) }

// Homer begins a homing cycle.
type Homer interface{ Home() error }

// GCodeSubmitter parses and buffers a single line of input.
type GCodeSubmitter interface{ SubmitLine(string) error }

// HTTPStart adds POST /start.
func HTTPStart(s Starter, table RouteTable) {
	table[MethodPath{http.MethodPost, "/start"}] = func(w http.ResponseWriter, r *http.Request) {
		if err := s.Start(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// HTTPStop adds POST /stop.
func HTTPStop(s Stopper, table RouteTable) {
	table[MethodPath{http.MethodPost, "/stop"}] = func(w http.ResponseWriter, r *http.Request) {
		if err := s.Stop(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// HTTPClear adds POST /clear.
func HTTPClear(c Clearer, table RouteTable) {
	table[MethodPath{http.MethodPost, "/clear"}] = func(w http.ResponseWriter, r *http.Request) {
		if err := c.Clear(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// HTTPPosition adds GET /position.
func HTTPPosition(p PositionQueryer, table RouteTable) {
	table[MethodPath{http.MethodGet, "/position"}] = func(w http.ResponseWriter, r *http.Request) {
		pos, err := p.Position()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		encodeJSON(w, map[string]interface{}{"position": pos})
	}
}

// HTTPStatus adds GET /status.
func HTTPStatus(s StatusQueryer, table RouteTable) {
	table[MethodPath{http.MethodGet, "/status"}] = func(w http.ResponseWriter, r *http.Request) {
		running, err := s.Running()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		encodeJSON(w, map[string]interface{}{"running": running})
	}
}

// HTTPHome adds POST /home.
func HTTPHome(h Homer, table RouteTable) {
	table[MethodPath{http.MethodPost, "/home"}] = func(w http.ResponseWriter, r *http.Request) {
		if err := h.Home(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// lineT is the JSON body POST /gcode expects.
type lineT struct {
	Line string `json:"line"`
}

// HTTPGCode adds POST /gcode, the HTTP analogue of the raw-command
// injector used elsewhere in this codebase for ASCII instruments.
func HTTPGCode(g GCodeSubmitter, table RouteTable) {
	table[MethodPath{http.MethodPost, "/gcode"}] = func(w http.ResponseWriter, r *http.Request) {
		var body lineT
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer r.Body.Close()
		if err := g.SubmitLine(body.Line); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// HTTPAxes adds GET /axes, listing the compiled-in axis names.
func HTTPAxes(names string, table RouteTable) {
	table[MethodPath{http.MethodGet, "/axes"}] = func(w http.ResponseWriter, r *http.Request) {
		letters := make([]string, len(names))
		for i, c := range names {
			letters[i] = string(c)
		}
		encodeJSON(w, map[string]interface{}{"axes": letters})
	}
}

func encodeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

// NewRouter builds a chi.Router exposing every capability machine
// implements, binding /endpoints to list the resulting routes.
func NewRouter(machine Machine) chi.Router {
	table := RouteTable{}
	HTTPStart(machine, table)
	HTTPStop(machine, table)
	HTTPClear(machine, table)
	HTTPPosition(machine, table)
	HTTPStatus(machine, table)
	HTTPHome(machine, table)
	HTTPGCode(machine, table)
	HTTPAxes(machine.AxisNames(), table)

	mux := chi.NewRouter()
	table.Bind(mux)
	mux.Get("/endpoints", func(w http.ResponseWriter, r *http.Request) {
		encodeJSON(w, table.Endpoints())
	})
	return mux
}

// Machine is the union of every capability the router exposes, backed by
// a single interp.Interpreter + exec.Executor pair in practice.
type Machine interface {
	Starter
	Stopper
	Clearer
	PositionQueryer
	StatusQueryer
	Homer
	GCodeSubmitter
	AxisNames() string
}
