package projection

import (
	"math"
	"time"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
)

type Kind string

const (
	KindConsumption Kind = "consumo"
	KindAlerts      Kind = "alertas"
	KindMaintenance Kind = "mantenimiento"
	KindPerformance Kind = "rendimiento"
)

// DefaultMaintenanceEvery is the service interval used when Input leaves it unset.
const DefaultMaintenanceEvery = 30 * 24 * time.Hour

var titles = map[Kind]string{
	KindConsumption: "Reporte de Consumo de Agua",
	KindAlerts:      "Reporte de Alertas y Problemas",
	KindMaintenance: "Reporte de Mantenimiento",
	KindPerformance: "Reporte de Rendimiento General",
}

// ParseKind reports whether s names a known report kind.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := titles[k]
	return k, ok
}

// Needs tells which extra datasets a kind reads besides the device list.
type Needs struct {
	Alerts   bool
	Readings bool
}

func (k Kind) Needs() Needs {
	switch k {
	case KindAlerts:
		return Needs{Alerts: true}
	case KindConsumption:
		return Needs{Readings: true}
	default:
		return Needs{}
	}
}

type Period struct {
	Name   string        `json:"nombre"`
	Window time.Duration `json:"-"`
}

// Hours is the window expressed as the backend's horas parameter.
func (p Period) Hours() int {
	return int(p.Window / time.Hour)
}

// ParsePeriod maps dia, semana and mes to their windows; anything else is dia.
func ParsePeriod(s string) Period {
	switch s {
	case "semana":
		return Period{Name: s, Window: 7 * 24 * time.Hour}
	case "mes":
		return Period{Name: s, Window: 30 * 24 * time.Hour}
	default:
		return Period{Name: "dia", Window: 24 * time.Hour}
	}
}

// Input is the data a report is projected from. Readings is keyed by device id.
type Input struct {
	Devices          []entities.Device
	Alerts           []entities.Alert
	Readings         map[int][]entities.Reading
	Now              time.Time
	MaintenanceEvery time.Duration
}

type Report struct {
	Kind        Kind               `json:"tipo"`
	Title       string             `json:"titulo"`
	Period      string             `json:"periodo"`
	From        time.Time          `json:"desde"`
	To          time.Time          `json:"hasta"`
	Consumption *ConsumptionReport `json:"consumo,omitempty"`
	Alerts      *AlertReport       `json:"alertas,omitempty"`
	Maintenance *MaintenanceReport `json:"mantenimiento,omitempty"`
	Performance *PerformanceReport `json:"rendimiento,omitempty"`
}

type DeviceConsumption struct {
	DeviceID int     `json:"dispensadora_id"`
	Name     string  `json:"nombre"`
	Location string  `json:"ubicacion"`
	Liters   float64 `json:"litros"`
}

type ConsumptionReport struct {
	Devices     []DeviceConsumption `json:"dispensadoras"`
	TotalLiters float64             `json:"total_litros"`
}

type AlertReport struct {
	Total    int `json:"total"`
	Critical int `json:"criticas"`
	Moderate int `json:"moderadas"`
	Other    int `json:"otras"`
}

type MaintenanceReport struct {
	InMaintenance int  `json:"en_mantenimiento"`
	Overdue       int  `json:"vencidos"`
	NextDueDays   int  `json:"proximo_en_dias"`
	HasNext       bool `json:"hay_proximo"`
}

type PerformanceReport struct {
	Total              int     `json:"total"`
	Active             int     `json:"activas"`
	OperationalPercent float64 `json:"porcentaje_operacional"`
}

// Generate projects in into a report of the given kind. An unknown kind
// yields false and no report.
func Generate(kind string, period Period, in Input) (Report, bool) {
	k, ok := ParseKind(kind)
	if !ok {
		return Report{}, false
	}
	if in.Now.IsZero() {
		in.Now = time.Now()
	}
	if period.Window <= 0 {
		period = ParsePeriod(period.Name)
	}

	r := Report{
		Kind:   k,
		Title:  titles[k],
		Period: period.Name,
		From:   in.Now.Add(-period.Window),
		To:     in.Now,
	}
	switch k {
	case KindConsumption:
		r.Consumption = consumption(in, r.From)
	case KindAlerts:
		r.Alerts = alerts(in, r.From)
	case KindMaintenance:
		r.Maintenance = maintenance(in)
	case KindPerformance:
		r.Performance = performance(in.Devices)
	}
	return r, true
}

// inWindow treats a missing timestamp as inside the window: the backend
// already scoped the query.
func inWindow(t, from, to time.Time) bool {
	if t.IsZero() {
		return true
	}
	return !t.Before(from) && !t.After(to)
}

func consumption(in Input, from time.Time) *ConsumptionReport {
	rep := &ConsumptionReport{Devices: make([]DeviceConsumption, 0, len(in.Devices))}
	var total float64
	for _, d := range in.Devices {
		var liters float64
		for _, rd := range in.Readings[d.ID] {
			if inWindow(rd.Timestamp.Time, from, in.Now) {
				liters += rd.WaterUsed
			}
		}
		total += liters
		rep.Devices = append(rep.Devices, DeviceConsumption{
			DeviceID: d.ID,
			Name:     d.Name,
			Location: d.Location,
			Liters:   round(liters, 2),
		})
	}
	rep.TotalLiters = round(total, 2)
	return rep
}

func alerts(in Input, from time.Time) *AlertReport {
	rep := &AlertReport{}
	for _, a := range in.Alerts {
		if a.Resolved || !inWindow(a.CreatedAt.Time, from, in.Now) {
			continue
		}
		rep.Total++
		switch a.Severity {
		case entities.SeverityCritical, entities.SeverityHigh:
			rep.Critical++
		case entities.SeverityMedium:
			rep.Moderate++
		default:
			rep.Other++
		}
	}
	return rep
}

func maintenance(in Input) *MaintenanceReport {
	every := in.MaintenanceEvery
	if every <= 0 {
		every = DefaultMaintenanceEvery
	}
	rep := &MaintenanceReport{}
	for _, d := range in.Devices {
		if d.State == entities.StateMaintenance {
			rep.InMaintenance++
		}
		last := d.LastMaintenance.Time
		if last.IsZero() {
			rep.Overdue++
			continue
		}
		left := last.Add(every).Sub(in.Now)
		if left <= 0 {
			rep.Overdue++
			continue
		}
		days := int(math.Ceil(left.Hours() / 24))
		if !rep.HasNext || days < rep.NextDueDays {
			rep.NextDueDays = days
			rep.HasNext = true
		}
	}
	return rep
}

func performance(devices []entities.Device) *PerformanceReport {
	rep := &PerformanceReport{Total: len(devices)}
	for _, d := range devices {
		if d.State == entities.StateActive {
			rep.Active++
		}
	}
	if rep.Total > 0 {
		rep.OperationalPercent = round(float64(rep.Active)/float64(rep.Total)*100, 1)
	}
	return rep
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
