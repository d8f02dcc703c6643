package pages

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
	"github.com/LeonardoBeccarini/dispensadoras/internal/scheduler"
	"github.com/LeonardoBeccarini/dispensadoras/internal/view"
	"github.com/LeonardoBeccarini/dispensadoras/pkg/backend"
)

// Default cadences.
const (
	DefaultRefreshInterval = 30 * time.Second
	DefaultMonitorInterval = 10 * time.Second
)

// Task names.
const (
	TaskStatistics  = "estadisticas"
	TaskDeviceTable = "dispensadoras-tabla"
	TaskAlerts      = "alertas-lista"
	TaskCharts      = "graficos"
	TaskDeviceGrid  = "dispensadoras-grid"
)

// RegionKind tells the page shell which element hosts a region.
type RegionKind int

const (
	KindText RegionKind = iota
	KindBar
	KindRows
	KindBlock
	KindCanvas
)

type Region struct {
	ID   string
	Kind RegionKind
}

// Deps are the collaborators a controller wires into its tasks.
type Deps struct {
	Backend         backend.Backend
	Renderer        *view.Renderer
	RefreshInterval time.Duration
	MonitorInterval time.Duration
	// OnDevices, when set, observes every successfully fetched device list.
	OnDevices func([]entities.Device)
	Logger    *zap.Logger
}

func (d Deps) refresh() time.Duration {
	if d.RefreshInterval > 0 {
		return d.RefreshInterval
	}
	return DefaultRefreshInterval
}

func (d Deps) monitor() time.Duration {
	if d.MonitorInterval > 0 {
		return d.MonitorInterval
	}
	return DefaultMonitorInterval
}

func (d Deps) observe(devices []entities.Device) {
	if d.OnDevices != nil {
		d.OnDevices(devices)
	}
}

// Controller describes one page: the regions it owns and the polling tasks
// that fill them.
type Controller interface {
	ID() string
	Title() string
	Regions() []Region
	Tasks(Deps) []scheduler.Task
}

// RegionIDs returns the non-canvas region ids of c.
func RegionIDs(c Controller) []string {
	var ids []string
	for _, r := range c.Regions() {
		if r.Kind != KindCanvas {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// CanvasIDs returns the chart canvas ids of c.
func CanvasIDs(c Controller) []string {
	var ids []string
	for _, r := range c.Regions() {
		if r.Kind == KindCanvas {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// aborted reports whether a fetch ended because the page went away; such
// results are discarded without rendering.
func aborted(ctx context.Context) bool {
	return ctx.Err() == context.Canceled
}
