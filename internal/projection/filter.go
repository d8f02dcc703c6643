package projection

import "github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"

// Criteria selects devices by state and type. An empty field matches all.
type Criteria struct {
	Status entities.DeviceState
	Type   string
}

func (c Criteria) Empty() bool {
	return c.Status == "" && c.Type == ""
}

// Filter keeps the devices satisfying every non-empty criterion, in input order.
func Filter(devices []entities.Device, c Criteria) []entities.Device {
	out := make([]entities.Device, 0, len(devices))
	for _, d := range devices {
		if c.Status != "" && d.State != c.Status {
			continue
		}
		if c.Type != "" && d.Type != c.Type {
			continue
		}
		out = append(out, d)
	}
	return out
}
