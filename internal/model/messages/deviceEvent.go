package messages

import (
	"time"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
)

// DeviceEvent is published by a dispensadora when its state changes.
// The dashboard only uses it to refresh the views that show devices.
type DeviceEvent struct {
	DeviceID  int                  `json:"dispensadora_id"`
	State     entities.DeviceState `json:"estado"`
	Timestamp time.Time            `json:"timestamp"`
}
