package app

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/dispensadoras/internal/pages"
	"github.com/LeonardoBeccarini/dispensadoras/internal/scheduler"
	"github.com/LeonardoBeccarini/dispensadoras/internal/view"
)

var (
	ErrUnknownPage = errors.New("unknown page")
	ErrHubClosed   = errors.New("hub closed")
)

// viewerBuffer is how many updates a viewer may lag behind before it is
// disconnected.
const viewerBuffer = 64

// Viewer is one connected client of a page.
type Viewer struct {
	ID   string
	send chan view.Update
	done chan struct{}
	once sync.Once
}

func NewViewer(id string) *Viewer {
	return &Viewer{
		ID:   id,
		send: make(chan view.Update, viewerBuffer),
		done: make(chan struct{}),
	}
}

// Updates delivers region and chart changes until the viewer is closed.
func (v *Viewer) Updates() <-chan view.Update { return v.send }

// Done is closed when the hub drops the viewer.
func (v *Viewer) Done() <-chan struct{} { return v.done }

func (v *Viewer) Close() { v.once.Do(func() { close(v.done) }) }

// enqueue never blocks; a full buffer means the viewer is too slow.
func (v *Viewer) enqueue(u view.Update) bool {
	select {
	case <-v.done:
		return false
	default:
	}
	select {
	case v.send <- u:
		return true
	default:
		return false
	}
}

// mounted is one live page shared by all of its viewers.
type mounted struct {
	ctrl     pages.Controller
	renderer *view.Renderer
	page     *scheduler.Page
	unsub    []func()

	mu      sync.RWMutex
	viewers map[string]*Viewer
}

func (m *mounted) broadcast(u view.Update, logger *zap.Logger) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.viewers {
		if !v.enqueue(u) {
			logger.Warn("viewer too slow, disconnecting", zap.String("viewer", v.ID))
			v.Close()
		}
	}
}

// Hub mounts a page on its first viewer and tears it down when the last one
// leaves, so every page identity has a single set of polling loops.
type Hub struct {
	registry *pages.Registry
	sched    *scheduler.Scheduler
	deps     pages.Deps
	metrics  *Metrics
	logger   *zap.Logger

	mu     sync.Mutex
	pages  map[string]*mounted
	closed bool
}

// NewHub builds a hub. deps.Renderer is ignored: each mount gets its own.
func NewHub(registry *pages.Registry, sched *scheduler.Scheduler, deps pages.Deps, metrics *Metrics, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		registry: registry,
		sched:    sched,
		deps:     deps,
		metrics:  metrics,
		logger:   logger,
		pages:    make(map[string]*mounted),
	}
}

// Join attaches v to the page at path, mounting it if needed. The viewer
// first receives the current content of the page.
func (h *Hub) Join(path string, v *Viewer) (pages.Controller, error) {
	ctrl, ok := h.registry.Resolve(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, path)
	}
	id := ctrl.ID()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}

	m, ok := h.pages[id]
	if !ok {
		m = h.mount(ctrl)
		h.pages[id] = m
	}

	m.mu.Lock()
	for _, u := range m.renderer.Regions().Snapshot() {
		v.enqueue(u)
	}
	for _, u := range m.renderer.Charts().Snapshot() {
		v.enqueue(u)
	}
	m.viewers[v.ID] = v
	m.mu.Unlock()

	h.logger.Info("viewer joined", zap.String("page", id), zap.String("viewer", v.ID))
	h.updateGauges()
	return ctrl, nil
}

// mount must be called with h.mu held.
func (h *Hub) mount(ctrl pages.Controller) *mounted {
	regions := view.NewRegions(pages.RegionIDs(ctrl)...)
	charts := view.NewCharts(pages.CanvasIDs(ctrl)...)
	m := &mounted{
		ctrl:     ctrl,
		renderer: view.NewRenderer(regions, charts),
		viewers:  make(map[string]*Viewer),
	}
	logger := h.logger.With(zap.String("page", ctrl.ID()))
	push := func(u view.Update) { m.broadcast(u, logger) }
	m.unsub = append(m.unsub, regions.Subscribe(push), charts.Subscribe(push))

	deps := h.deps
	deps.Renderer = m.renderer
	m.page = h.sched.Mount(ctrl.ID(), ctrl.Tasks(deps))
	logger.Info("page mounted", zap.Strings("tasks", m.page.Tasks()))
	return m
}

// Leave detaches v. When it was the last viewer the page is torn down
// before Leave returns.
func (h *Hub) Leave(path string, v *Viewer) {
	v.Close()
	ctrl, ok := h.registry.Resolve(path)
	if !ok {
		return
	}
	id := ctrl.ID()

	h.mu.Lock()
	m, ok := h.pages[id]
	if !ok {
		h.mu.Unlock()
		return
	}
	m.mu.Lock()
	delete(m.viewers, v.ID)
	last := len(m.viewers) == 0
	m.mu.Unlock()
	if last {
		delete(h.pages, id)
	}
	h.updateGauges()
	h.mu.Unlock()

	h.logger.Info("viewer left", zap.String("page", id), zap.String("viewer", v.ID))
	if last {
		h.teardown(id, m)
	}
}

// teardown runs without h.mu: loops may be blocked publishing to viewers.
func (h *Hub) teardown(id string, m *mounted) {
	m.page.Teardown()
	m.renderer.Teardown()
	for _, unsub := range m.unsub {
		unsub()
	}
	h.logger.Info("page torn down", zap.String("page", id))
}

// TriggerAll asks every mounted page for an immediate refresh.
func (h *Hub) TriggerAll() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, m := range h.pages {
		m.page.TriggerAll()
	}
	return len(h.pages)
}

// Snapshot returns the current updates of a mounted page, or nil.
func (h *Hub) Snapshot(path string) []view.Update {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.pages[pages.Normalize(path)]
	if !ok {
		return nil
	}
	return append(m.renderer.Regions().Snapshot(), m.renderer.Charts().Snapshot()...)
}

// Mounted lists the ids of mounted pages, sorted.
func (h *Hub) Mounted() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.pages))
	for id := range h.pages {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (h *Hub) Viewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.viewersLocked()
}

func (h *Hub) viewersLocked() int {
	n := 0
	for _, m := range h.pages {
		m.mu.RLock()
		n += len(m.viewers)
		m.mu.RUnlock()
	}
	return n
}

func (h *Hub) updateGauges() {
	h.metrics.setMounted(len(h.pages), h.viewersLocked())
}

// Close disconnects every viewer and tears down every page.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	pagesByID := h.pages
	h.pages = make(map[string]*mounted)
	h.updateGauges()
	h.mu.Unlock()

	for id, m := range pagesByID {
		m.mu.Lock()
		for _, v := range m.viewers {
			v.Close()
		}
		m.viewers = map[string]*Viewer{}
		m.mu.Unlock()
		h.teardown(id, m)
	}
}
