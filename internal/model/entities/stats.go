package entities

import "encoding/json"

// Statistics is the aggregate snapshot computed server-side (GET /estadisticas).
type Statistics struct {
	TotalDevices       int     `json:"total_dispensadoras"`
	ActiveDevices      int     `json:"dispensadoras_activas"`
	PendingAlerts      int     `json:"alertas_pendientes"`
	AverageFillLevel   float64 `json:"nivel_promedio"`
	AverageTemperature float64 `json:"temperatura_promedio"`
}

// Health is the payload of GET /status. Unknown fields are kept in Extra.
type Health struct {
	Status    string                     `json:"status"`
	Version   string                     `json:"version,omitempty"`
	Timestamp string                     `json:"timestamp,omitempty"`
	Extra     map[string]json.RawMessage `json:"-"`
}

func (h *Health) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	pick := func(key string) string {
		raw, ok := m[key]
		if !ok {
			return ""
		}
		delete(m, key)
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return string(raw)
		}
		return s
	}
	h.Status = pick("status")
	h.Version = pick("version")
	h.Timestamp = pick("timestamp")
	h.Extra = m
	return nil
}

// OK reports whether the backend declares itself healthy. A missing status
// on a 2xx response counts as healthy.
func (h Health) OK() bool {
	switch h.Status {
	case "", "ok", "OK", "healthy", "up", "online":
		return true
	}
	return false
}
