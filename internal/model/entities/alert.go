package entities

// Severity of an alert. The backend default is "media".
type Severity string

const (
	SeverityCritical Severity = "critica"
	SeverityHigh     Severity = "alta"
	SeverityMedium   Severity = "media"
	SeverityLow      Severity = "baja"
)

// Alert is an alerta raised for a dispensadora (low level, high temperature, sensor failure...).
type Alert struct {
	ID          int       `json:"id"`
	DeviceID    int       `json:"dispensadora_id"`
	Type        string    `json:"tipo"`
	Description string    `json:"descripcion"`
	Severity    Severity  `json:"severidad"`
	Resolved    bool      `json:"resuelta"`
	CreatedAt   Timestamp `json:"fecha_creacion"`
	ResolvedAt  Timestamp `json:"fecha_resolucion"`
}
