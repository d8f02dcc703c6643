package view

import "sync"

// Canvas ids of the dashboard charts.
const (
	CanvasType        = "tipoChart"
	CanvasState       = "estadoChart"
	CanvasLevel       = "nivelChart"
	CanvasTemperature = "temperaturaChart"
)

// ChartConfig is a Chart.js configuration.
type ChartConfig struct {
	Type    string         `json:"type"`
	Data    ChartData      `json:"data"`
	Options map[string]any `json:"options,omitempty"`
}

type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset colours are either a single colour or one per point, hence any.
type Dataset struct {
	Label           string    `json:"label,omitempty"`
	Data            []float64 `json:"data"`
	BackgroundColor any       `json:"backgroundColor,omitempty"`
	BorderColor     string    `json:"borderColor,omitempty"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
	Fill            bool      `json:"fill,omitempty"`
}

// Chart is one constructed chart bound to a canvas.
type Chart struct {
	Canvas string
	Config ChartConfig

	mu        sync.Mutex
	destroyed bool
}

// Destroy releases the chart; it is safe to call more than once.
func (c *Chart) Destroy() {
	c.mu.Lock()
	c.destroyed = true
	c.mu.Unlock()
}

func (c *Chart) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

// Charts is the chart registry of one mounted page, keyed by canvas id.
// At most one live chart exists per canvas.
type Charts struct {
	mu       sync.Mutex
	canvases map[string]bool
	charts   map[string]*Chart
	mounted  bool
	subs     listeners
}

func NewCharts(canvases ...string) *Charts {
	c := &Charts{
		canvases: make(map[string]bool, len(canvases)),
		charts:   make(map[string]*Chart, len(canvases)),
		mounted:  true,
	}
	for _, id := range canvases {
		c.canvases[id] = true
	}
	return c
}

// Put destroys the chart currently bound to canvas, if any, then constructs
// a new one from cfg. It returns nil when the canvas is absent or the page
// has been torn down.
func (c *Charts) Put(canvas string, cfg ChartConfig) *Chart {
	c.mu.Lock()
	if !c.mounted || !c.canvases[canvas] {
		c.mu.Unlock()
		return nil
	}
	if prev, ok := c.charts[canvas]; ok {
		prev.Destroy()
	}
	ch := &Chart{Canvas: canvas, Config: cfg}
	c.charts[canvas] = ch
	c.mu.Unlock()

	c.subs.notify(Update{Chart: canvas, Config: &cfg})
	return ch
}

// Get returns the live chart of canvas, or nil.
func (c *Charts) Get(canvas string) *Chart {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.charts[canvas]
}

func (c *Charts) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.charts)
}

// Snapshot returns the current config of every live chart.
func (c *Charts) Snapshot() []Update {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Update, 0, len(c.charts))
	for id, ch := range c.charts {
		cfg := ch.Config
		out = append(out, Update{Chart: id, Config: &cfg})
	}
	return out
}

func (c *Charts) Subscribe(fn func(Update)) (unsubscribe func()) {
	return c.subs.add(fn)
}

// DestroyAll destroys every chart and refuses further Puts.
func (c *Charts) DestroyAll() {
	c.mu.Lock()
	destroyed := make([]string, 0, len(c.charts))
	for id, ch := range c.charts {
		ch.Destroy()
		destroyed = append(destroyed, id)
	}
	c.charts = map[string]*Chart{}
	c.mounted = false
	c.mu.Unlock()

	for _, id := range destroyed {
		c.subs.notify(Update{Chart: id, Destroyed: true})
	}
}
