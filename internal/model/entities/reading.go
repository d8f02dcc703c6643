package entities

// Reading is one sensor sample (lectura) of a dispensadora.
type Reading struct {
	ID          int       `json:"id"`
	DeviceID    int       `json:"dispensadora_id"`
	FillLevel   float64   `json:"nivel_llenado"`
	Temperature float64   `json:"temperatura"`
	Humidity    float64   `json:"humedad"`
	Pressure    float64   `json:"presion"`
	WaterUsed   float64   `json:"consumo_agua"` // litri
	Timestamp   Timestamp `json:"timestamp"`
}
