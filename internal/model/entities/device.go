package entities

// DeviceState is the status reported by the backend for a dispensadora.
// Values outside the known set are kept as-is and rendered with a fallback.
type DeviceState string

const (
	StateActive      DeviceState = "activa"
	StateInactive    DeviceState = "inactiva"
	StateAlert       DeviceState = "alerta"
	StateCritical    DeviceState = "critico"
	StateMaintenance DeviceState = "mantenimiento"
)

// Known reports whether s is one of the states the backend defines.
func (s DeviceState) Known() bool {
	switch s {
	case StateActive, StateInactive, StateAlert, StateCritical, StateMaintenance:
		return true
	}
	return false
}

// Device represents a single dispensadora as served by GET /dispensadoras.
type Device struct {
	ID              int         `json:"id"`
	Name            string      `json:"nombre"`
	Location        string      `json:"ubicacion"`
	Serial          string      `json:"serial"`
	Type            string      `json:"tipo"`          // agua, cafe, snacks...
	FillLevel       float64     `json:"nivel_llenado"` // 0-100
	CapacityLiters  float64     `json:"capacidad_litros"`
	State           DeviceState `json:"estado"`
	Temperature     float64     `json:"temperatura"`
	Humidity        float64     `json:"humedad"`
	InstalledAt     Timestamp   `json:"fecha_instalacion"`
	LastMaintenance Timestamp   `json:"fecha_ultimo_mantenimiento"`
	Enabled         bool        `json:"activa"`
}

// ClampedFillLevel keeps the fill level inside [0,100] for progress bars.
func (d Device) ClampedFillLevel() float64 {
	switch {
	case d.FillLevel < 0:
		return 0
	case d.FillLevel > 100:
		return 100
	default:
		return d.FillLevel
	}
}
