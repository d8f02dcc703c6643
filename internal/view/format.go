package view

import (
	"html/template"
	"strconv"
	"time"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
)

// FallbackColor is used for any state outside the colour table.
const FallbackColor = "#2563eb"

var stateColors = map[entities.DeviceState]string{
	entities.StateActive:   "#10b981",
	entities.StateInactive: "#6b7280",
	entities.StateAlert:    "#f59e0b",
	entities.StateCritical: "#ef4444",
}

// StatusColor maps a device state to its display colour.
func StatusColor(state entities.DeviceState) string {
	if c, ok := stateColors[state]; ok {
		return c
	}
	return FallbackColor
}

// StatusBadge returns the badge markup for a state. The state is escaped,
// so unknown values from the backend are rendered verbatim but safely.
func StatusBadge(state entities.DeviceState) template.HTML {
	s := template.HTMLEscapeString(string(state))
	return template.HTML(`<span class="badge-status badge-` + s + `">` + s + `</span>`)
}

// FormatPercent formats v with one decimal, without the % sign.
func FormatPercent(v float64) string {
	return formatFixed(v, 1)
}

// FormatNumber prints v with the shortest representation (21.5, 20, 19.75).
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SeverityClass maps an alert severity to the bootstrap alert class.
func SeverityClass(s entities.Severity) string {
	switch s {
	case entities.SeverityCritical:
		return "alert-danger"
	case entities.SeverityMedium:
		return "alert-warning"
	default:
		return "alert-info"
	}
}

// FormatDate renders t as dd/mm/yyyy, hh:mm:ss (es-ES), or "-" for zero values.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006, 15:04:05")
}

// LowLevel reports whether a device must be highlighted in the monitoring grid.
func LowLevel(d entities.Device) bool {
	return d.FillLevel < 20
}

func formatFixed(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
