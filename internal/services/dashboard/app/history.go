package app

import (
	"strconv"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
)

const historyMeasurement = "dispensadora"

// History writes a snapshot point per device every time a page fetches the
// device list. It wraps the non-blocking WriteAPI and remembers the last
// asynchronous write error for the health endpoints.
// A nil *History is valid and records nothing.
type History struct {
	api     api.WriteAPI
	logger  *zap.Logger
	metrics *Metrics
	now     func() time.Time

	mu      sync.RWMutex
	lastErr time.Time
}

func NewHistory(w api.WriteAPI, metrics *Metrics, logger *zap.Logger) *History {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &History{
		api:     w,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
	go func() {
		for err := range w.Errors() {
			if err == nil {
				continue
			}
			h.mu.Lock()
			h.lastErr = time.Now()
			h.mu.Unlock()
			h.logger.Warn("influx write error", zap.Error(err))
		}
	}()
	return h
}

// RecordDevices queues one point per device.
func (h *History) RecordDevices(devices []entities.Device) {
	if h == nil || len(devices) == 0 {
		return
	}
	at := h.now()
	for _, d := range devices {
		h.api.WritePoint(devicePoint(d, at))
	}
	h.metrics.historyPoint(len(devices))
}

func devicePoint(d entities.Device, at time.Time) *write.Point {
	return influxdb2.NewPoint(historyMeasurement,
		map[string]string{
			"dispensadora_id": strconv.Itoa(d.ID),
			"nombre":          d.Name,
			"tipo":            d.Type,
			"estado":          string(d.State),
			"ubicacion":       d.Location,
		},
		map[string]interface{}{
			"nivel_llenado": d.FillLevel,
			"temperatura":   d.Temperature,
			"humedad":       d.Humidity,
		},
		at,
	)
}

// LastErrorAge is the time since the last write error; a writer that never
// failed reports a very large age.
func (h *History) LastErrorAge() time.Duration {
	if h == nil {
		return 99999 * time.Hour
	}
	h.mu.RLock()
	t := h.lastErr
	h.mu.RUnlock()
	if t.IsZero() {
		return 99999 * time.Hour
	}
	return time.Since(t)
}

// Flush forces pending points out, used on shutdown.
func (h *History) Flush() {
	if h == nil {
		return
	}
	h.api.Flush()
}
