package view

import "sync"

// Update is a single change of a page surface pushed to viewers.
// Region updates carry the full replacement HTML; chart updates carry the
// new config or the destroyed flag.
type Update struct {
	Region    string       `json:"region,omitempty"`
	HTML      string       `json:"html,omitempty"`
	Chart     string       `json:"chart,omitempty"`
	Config    *ChartConfig `json:"config,omitempty"`
	Destroyed bool         `json:"destroyed,omitempty"`
}

type listeners struct {
	mu   sync.RWMutex
	next uint64
	fns  map[uint64]func(Update)
}

func (l *listeners) add(fn func(Update)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[uint64]func(Update))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		delete(l.fns, id)
		l.mu.Unlock()
	}
}

func (l *listeners) notify(u Update) {
	l.mu.RLock()
	fns := make([]func(Update), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.RUnlock()
	for _, fn := range fns {
		fn(u)
	}
}
