package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/messages"
	"github.com/LeonardoBeccarini/dispensadoras/pkg/dedup"
)

// Event outcomes, also used as metric labels.
const (
	eventRefresh   = "refresh"
	eventDuplicate = "duplicate"
	eventInvalid   = "invalid"
)

type refresher interface {
	TriggerAll() int
}

// DeviceEvents turns device state notifications into immediate refreshes of
// the mounted pages. Redelivered or repeated notifications for the same
// device and state inside the dedup window trigger nothing.
type DeviceEvents struct {
	hub     refresher
	dedup   *dedup.Deduper
	metrics *Metrics
	logger  *zap.Logger
}

func NewDeviceEvents(hub refresher, d *dedup.Deduper, metrics *Metrics, logger *zap.Logger) *DeviceEvents {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceEvents{hub: hub, dedup: d, metrics: metrics, logger: logger}
}

// Handle matches rabbitmq.Handler.
func (e *DeviceEvents) Handle(topic string, m mqtt.Message) error {
	var evt messages.DeviceEvent
	if err := json.Unmarshal(m.Payload(), &evt); err != nil {
		e.metrics.deviceEvent(eventInvalid)
		return fmt.Errorf("decode device event on %s: %w", topic, err)
	}
	if evt.DeviceID == 0 {
		evt.DeviceID = deviceIDFromTopic(topic)
	}

	key := strconv.Itoa(evt.DeviceID) + ":" + string(evt.State)
	if e.dedup != nil && !e.dedup.ShouldProcess(key) {
		e.metrics.deviceEvent(eventDuplicate)
		return nil
	}

	n := e.hub.TriggerAll()
	e.metrics.deviceEvent(eventRefresh)
	e.logger.Debug("device event",
		zap.Int("dispensadora_id", evt.DeviceID),
		zap.String("estado", string(evt.State)),
		zap.Int("pages_refreshed", n),
	)
	return nil
}

// deviceIDFromTopic reads the numeric segment of topics shaped like
// dispensadoras/{id}/eventos.
func deviceIDFromTopic(topic string) int {
	for _, part := range strings.Split(topic, "/") {
		if id, err := strconv.Atoi(part); err == nil {
			return id
		}
	}
	return 0
}
