package view

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
	"github.com/LeonardoBeccarini/dispensadoras/internal/projection"
)

// Region ids written by the renderer.
const (
	RegionTotalDevices  = "total-dispensadoras"
	RegionActiveDevices = "dispensadoras-activas"
	RegionPendingAlerts = "alertas-pendientes"
	RegionAvgTemp       = "temperatura-promedio"
	RegionAvgFillBar    = "nivel-promedio-bar"
	RegionAvgFillText   = "nivel-promedio-text"

	RegionDeviceTable = "dispensadoras-tabla"
	RegionAlertList   = "alertas-lista"
	RegionDeviceGrid  = "dispensadoras-grid"
)

// StatisticsRegions lists the counters filled by RenderStatistics.
var StatisticsRegions = []string{
	RegionTotalDevices, RegionActiveDevices, RegionPendingAlerts,
	RegionAvgTemp, RegionAvgFillBar, RegionAvgFillText,
}

// ChartCanvases lists the dashboard canvases filled by RenderCharts.
var ChartCanvases = []string{CanvasType, CanvasState, CanvasLevel, CanvasTemperature}

// MaxAlerts bounds the alert list.
const MaxAlerts = 5

const loadDevicesError = "Error al cargar dispensadoras"

// Renderer reconciles fetched data into the regions and charts of one page.
// Every routine replaces the full content of its target, so repeating a
// render with the same data yields the same output.
type Renderer struct {
	regions *Regions
	charts  *Charts
}

func NewRenderer(regions *Regions, charts *Charts) *Renderer {
	if regions == nil {
		regions = NewRegions()
	}
	if charts == nil {
		charts = NewCharts()
	}
	return &Renderer{regions: regions, charts: charts}
}

func (r *Renderer) Regions() *Regions { return r.regions }
func (r *Renderer) Charts() *Charts   { return r.charts }

// RenderStatistics writes the counters. It is only called on success, so a
// failed refresh leaves the previous values in place.
func (r *Renderer) RenderStatistics(s entities.Statistics) {
	esc := template.HTMLEscapeString
	r.regions.Replace(RegionTotalDevices, esc(fmt.Sprint(s.TotalDevices)))
	r.regions.Replace(RegionActiveDevices, esc(fmt.Sprint(s.ActiveDevices)))
	r.regions.Replace(RegionPendingAlerts, esc(fmt.Sprint(s.PendingAlerts)))
	r.regions.Replace(RegionAvgTemp, FormatNumber(s.AverageTemperature)+"°C")
	r.regions.Replace(RegionAvgFillBar, fmt.Sprintf(`<div class="progress-bar" style="width: %s%%;"></div>`, FormatNumber(clamp(s.AverageFillLevel))))
	r.regions.Replace(RegionAvgFillText, FormatPercent(s.AverageFillLevel)+"%")
}

func (r *Renderer) RenderDeviceTable(devices []entities.Device) error {
	html, err := DeviceTableHTML(devices)
	if err != nil {
		return err
	}
	r.regions.Replace(RegionDeviceTable, html)
	return nil
}

func (r *Renderer) RenderDeviceTableError() {
	r.regions.Replace(RegionDeviceTable, DeviceTableErrorHTML())
}

// RenderAlerts shows at most MaxAlerts unresolved alerts, in input order.
func (r *Renderer) RenderAlerts(alerts []entities.Alert) error {
	html, err := AlertListHTML(alerts)
	if err != nil {
		return err
	}
	r.regions.Replace(RegionAlertList, html)
	return nil
}

func (r *Renderer) RenderDeviceGrid(devices []entities.Device) error {
	html, err := DeviceGridHTML(devices)
	if err != nil {
		return err
	}
	r.regions.Replace(RegionDeviceGrid, html)
	return nil
}

func (r *Renderer) RenderDeviceGridError() {
	r.regions.Replace(RegionDeviceGrid, DeviceGridErrorHTML())
}

// RenderCharts rebuilds the four dashboard charts from devices.
func (r *Renderer) RenderCharts(devices []entities.Device) {
	r.charts.Put(CanvasType, TypeChart(devices))
	r.charts.Put(CanvasState, StateChart(devices))
	r.charts.Put(CanvasLevel, LevelChart(devices))
	r.charts.Put(CanvasTemperature, TemperatureChart(devices))
}

// Teardown drops the page surface: regions stop accepting writes and every
// chart is destroyed.
func (r *Renderer) Teardown() {
	r.regions.Unmount()
	r.charts.DestroyAll()
}

func DeviceTableHTML(devices []entities.Device) (string, error) {
	return execute("table", devices)
}

func DeviceTableErrorHTML() string {
	return `<tr><td colspan="6" class="text-danger">` + loadDevicesError + `</td></tr>`
}

func DeviceGridHTML(devices []entities.Device) (string, error) {
	return execute("grid", devices)
}

func DeviceGridErrorHTML() string {
	return `<p class="text-danger text-center w-100">` + loadDevicesError + `</p>`
}

func AlertListHTML(alerts []entities.Alert) (string, error) {
	pending := make([]entities.Alert, 0, MaxAlerts)
	for _, a := range alerts {
		if a.Resolved {
			continue
		}
		pending = append(pending, a)
		if len(pending) == MaxAlerts {
			break
		}
	}
	return execute("alerts", pending)
}

type detail struct {
	Device   entities.Device
	Readings []entities.Reading
}

func DeviceDetailHTML(d entities.Device, readings []entities.Reading) (string, error) {
	return execute("detail", detail{Device: d, Readings: readings})
}

func ReportHTML(rep projection.Report) (string, error) {
	return execute("report", rep)
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
