package pages

import (
	"context"

	"github.com/LeonardoBeccarini/dispensadoras/internal/scheduler"
	"github.com/LeonardoBeccarini/dispensadoras/internal/view"
)

// Index shows the statistics counters, the device table and pending alerts.
type Index struct{}

func (Index) ID() string    { return PathIndex }
func (Index) Title() string { return "Dispensadoras Inteligentes" }

func (Index) Regions() []Region {
	return []Region{
		{ID: view.RegionTotalDevices, Kind: KindText},
		{ID: view.RegionActiveDevices, Kind: KindText},
		{ID: view.RegionPendingAlerts, Kind: KindText},
		{ID: view.RegionAvgTemp, Kind: KindText},
		{ID: view.RegionAvgFillBar, Kind: KindBar},
		{ID: view.RegionAvgFillText, Kind: KindText},
		{ID: view.RegionDeviceTable, Kind: KindRows},
		{ID: view.RegionAlertList, Kind: KindBlock},
	}
}

func (Index) Tasks(d Deps) []scheduler.Task {
	return []scheduler.Task{
		{
			Name:    TaskStatistics,
			Cadence: scheduler.Every(d.refresh()),
			Run: func(ctx context.Context) error {
				stats, err := d.Backend.GetStatistics(ctx)
				if err != nil {
					// counters keep their last values
					return err
				}
				d.Renderer.RenderStatistics(*stats)
				return nil
			},
		},
		{
			Name:    TaskDeviceTable,
			Cadence: scheduler.Once(),
			Run: func(ctx context.Context) error {
				devices, err := d.Backend.ListDevices(ctx)
				if err != nil {
					if !aborted(ctx) {
						d.Renderer.RenderDeviceTableError()
					}
					return err
				}
				d.observe(devices)
				return d.Renderer.RenderDeviceTable(devices)
			},
		},
		{
			Name:    TaskAlerts,
			Cadence: scheduler.Once(),
			Run: func(ctx context.Context) error {
				alerts, err := d.Backend.ListAlerts(ctx, false)
				if err != nil {
					return err
				}
				return d.Renderer.RenderAlerts(alerts)
			},
		},
	}
}

// Dashboard shows the four fleet charts.
type Dashboard struct{}

func (Dashboard) ID() string    { return PathDashboard }
func (Dashboard) Title() string { return "Dashboard" }

func (Dashboard) Regions() []Region {
	regions := make([]Region, 0, len(view.ChartCanvases))
	for _, c := range view.ChartCanvases {
		regions = append(regions, Region{ID: c, Kind: KindCanvas})
	}
	return regions
}

func (Dashboard) Tasks(d Deps) []scheduler.Task {
	return []scheduler.Task{{
		Name:    TaskCharts,
		Cadence: scheduler.Once(),
		Run: func(ctx context.Context) error {
			devices, err := d.Backend.ListDevices(ctx)
			if err != nil {
				return err
			}
			d.observe(devices)
			d.Renderer.RenderCharts(devices)
			return nil
		},
	}}
}

// Monitoring shows the live device grid.
type Monitoring struct{}

func (Monitoring) ID() string    { return PathMonitoring }
func (Monitoring) Title() string { return "Monitoreo" }

func (Monitoring) Regions() []Region {
	return []Region{{ID: view.RegionDeviceGrid, Kind: KindBlock}}
}

func (Monitoring) Tasks(d Deps) []scheduler.Task {
	return []scheduler.Task{{
		Name:    TaskDeviceGrid,
		Cadence: scheduler.Every(d.monitor()),
		Run: func(ctx context.Context) error {
			devices, err := d.Backend.ListDevices(ctx)
			if err != nil {
				if !aborted(ctx) {
					d.Renderer.RenderDeviceGridError()
				}
				return err
			}
			d.observe(devices)
			return d.Renderer.RenderDeviceGrid(devices)
		},
	}}
}
