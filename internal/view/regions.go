package view

import (
	"sort"
	"sync"
)

// Regions holds the content of the display regions owned by one mounted page.
// Each region is written by exactly one task; writes always replace the whole
// content. After Unmount every write is a no-op.
type Regions struct {
	mu      sync.RWMutex
	content map[string]string
	owned   map[string]bool
	mounted bool
	subs    listeners
}

// NewRegions mounts the given region ids with empty content.
func NewRegions(ids ...string) *Regions {
	r := &Regions{
		content: make(map[string]string, len(ids)),
		owned:   make(map[string]bool, len(ids)),
		mounted: true,
	}
	for _, id := range ids {
		r.owned[id] = true
	}
	return r
}

// Replace sets the content of region id. It returns false, without side
// effects, when the region is not owned or the page is gone.
func (r *Regions) Replace(id, html string) bool {
	r.mu.Lock()
	if !r.mounted || !r.owned[id] {
		r.mu.Unlock()
		return false
	}
	r.content[id] = html
	r.mu.Unlock()

	r.subs.notify(Update{Region: id, HTML: html})
	return true
}

// Get returns the current content of region id.
func (r *Regions) Get(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.mounted || !r.owned[id] {
		return "", false
	}
	html, ok := r.content[id]
	return html, ok
}

// Snapshot returns one update per rendered region, sorted by id, so a viewer
// joining late can catch up.
func (r *Regions) Snapshot() []Update {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Update, 0, len(r.content))
	for id, html := range r.content {
		out = append(out, Update{Region: id, HTML: html})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Region < out[j].Region })
	return out
}

// IDs lists the owned region ids, sorted.
func (r *Regions) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.owned))
	for id := range r.owned {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Mounted reports whether the page owning these regions is still alive.
func (r *Regions) Mounted() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mounted
}

// Subscribe registers fn for every successful Replace.
func (r *Regions) Subscribe(fn func(Update)) (unsubscribe func()) {
	return r.subs.add(fn)
}

// Unmount drops all content; later renders targeting these regions no-op.
func (r *Regions) Unmount() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mounted = false
	r.content = map[string]string{}
}
