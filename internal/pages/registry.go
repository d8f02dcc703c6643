package pages

import (
	"sort"
	"strings"
	"sync"
)

// Page paths.
const (
	PathIndex      = "/"
	PathDashboard  = "/dashboard"
	PathMonitoring = "/monitoreo"
)

// Registry is the route table mapping a page path to its controller.
type Registry struct {
	mu     sync.RWMutex
	routes map[string]Controller
}

// NewRegistry returns a registry with the three dashboard pages.
func NewRegistry() *Registry {
	r := &Registry{routes: make(map[string]Controller)}
	r.Register(Index{})
	r.Register(Dashboard{})
	r.Register(Monitoring{})
	return r
}

// Register binds c to its ID, replacing any previous controller.
func (r *Registry) Register(c Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[Normalize(c.ID())] = c
}

// Resolve returns the controller of path. An unknown path yields false and
// callers treat it as nothing to mount.
func (r *Registry) Resolve(path string) (Controller, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.routes[Normalize(path)]
	return c, ok
}

// Paths lists the registered page paths, sorted.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.routes))
	for p := range r.routes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Normalize maps "", "/" and "/index.html" to the index path and strips any
// query string or trailing slash.
func Normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if path == "" || path == "/" || path == "/index.html" {
		return PathIndex
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(path, "/")
}
