// Package routes maps application screens to the permission that gates them
// and decides, per request, whether the screen or the denial view is shown.
package routes

import (
	"errors"
	"fmt"
	"strings"

	"erp-access/metrics"
	"erp-access/permissions"
)

// ErrNoRoute is returned for paths that match no declared route.
var ErrNoRoute = errors.New("no route matches path")

// View is what the layout renders for a matched route.
type View string

const (
	ViewPage   View = "page"
	ViewDenied View = "denied"
)

// Route is one screen. Path segments written as {name} match any single
// segment. An empty Permission leaves the screen ungated.
type Route struct {
	Path       string `json:"path"`
	Page       string `json:"page"`
	Title      string `json:"title"`
	Permission string `json:"permission,omitempty"`
}

func (r Route) segments() []string {
	return split(r.Path)
}

// Table is an immutable set of routes.
type Table struct {
	routes []Route
}

// NewTable validates routes against reg: every permission must be
// registered and every path declared once.
func NewTable(reg *permissions.Registry, routes ...Route) (*Table, error) {
	seen := make(map[string]bool, len(routes))
	t := &Table{routes: make([]Route, 0, len(routes))}
	for _, r := range routes {
		r.Path = normalize(r.Path)
		if seen[r.Path] {
			return nil, fmt.Errorf("duplicate route %s", r.Path)
		}
		seen[r.Path] = true
		if r.Permission != "" {
			if _, ok := reg.ByCode(r.Permission); !ok {
				return nil, fmt.Errorf("route %s: unknown permission %s", r.Path, r.Permission)
			}
		}
		if r.Page == "" {
			return nil, fmt.Errorf("route %s: page is required", r.Path)
		}
		t.routes = append(t.routes, r)
	}
	return t, nil
}

// MustTable is like NewTable but panics on error.
func MustTable(reg *permissions.Registry, routes ...Route) *Table {
	t, err := NewTable(reg, routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// Routes returns the routes in declaration order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// Match finds the route for path. Literal segments win over {params}.
func (t *Table) Match(path string) (Route, bool) {
	segs := split(normalize(path))
	best, bestScore := -1, -1
	for i, r := range t.routes {
		score, ok := match(r.segments(), segs)
		if ok && score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return Route{}, false
	}
	return t.routes[best], true
}

func match(pattern, segs []string) (int, bool) {
	if len(pattern) != len(segs) {
		return 0, false
	}
	literal := 0
	for i, p := range pattern {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			continue
		}
		if p != segs[i] {
			return 0, false
		}
		literal++
	}
	return literal, true
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return "/" + strings.Join(split(path), "/")
}

func split(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Decision is the outcome of guarding one navigation.
type Decision struct {
	Route Route `json:"route"`
	View  View  `json:"view"`
}

func (d Decision) Allowed() bool { return d.View == ViewPage }

// Guard applies a Table to a user's permission object.
type Guard struct {
	table   *Table
	metrics *metrics.Metrics
}

// NewGuard returns a guard over table. m may be nil.
func NewGuard(table *Table, m *metrics.Metrics) *Guard {
	return &Guard{table: table, metrics: m}
}

func (g *Guard) Table() *Table { return g.table }

// Resolve decides what to render for path. The route matches regardless
// of permissions; a gated route renders the denial view unless perms holds
// its key. A nil perms denies every gated route.
func (g *Guard) Resolve(path string, perms permissions.Set) (Decision, error) {
	r, ok := g.table.Match(path)
	if !ok {
		return Decision{}, fmt.Errorf("%w: %s", ErrNoRoute, normalize(path))
	}
	return Decision{Route: r, View: g.decide(r, perms)}, nil
}

func (g *Guard) decide(r Route, perms permissions.Set) View {
	if r.Permission == "" {
		return ViewPage
	}
	allowed := perms.Has(r.Permission)
	g.metrics.GuardDecision(r.Permission, allowed)
	if !allowed {
		return ViewDenied
	}
	return ViewPage
}

// MenuItem is a route annotated with whether the user may open it.
type MenuItem struct {
	Route
	Allowed bool `json:"allowed"`
}

// Menu lists every route with its allowed flag for perms.
func (g *Guard) Menu(perms permissions.Set) []MenuItem {
	items := make([]MenuItem, 0, len(g.table.routes))
	for _, r := range g.table.routes {
		allowed := r.Permission == "" || perms.Has(r.Permission)
		items = append(items, MenuItem{Route: r, Allowed: allowed})
	}
	return items
}
