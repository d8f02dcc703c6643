package app

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/dispensadoras/internal/config"
	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
	"github.com/LeonardoBeccarini/dispensadoras/pkg/backend"
)

type fakeBackend struct {
	mu         sync.Mutex
	devices    []entities.Device
	devicesErr error
	alerts     []entities.Alert
	readings   map[int][]entities.Reading
	stats      entities.Statistics
	status     string
	statusErr  error

	deviceCalls  atomic.Int64
	alertCalls   atomic.Int64
	readingCalls atomic.Int64
}

var _ backend.Backend = (*fakeBackend)(nil)

func (f *fakeBackend) ListDevices(context.Context) ([]entities.Device, error) {
	f.deviceCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.devicesErr != nil {
		return nil, f.devicesErr
	}
	return append([]entities.Device(nil), f.devices...), nil
}

func (f *fakeBackend) GetDevice(_ context.Context, id int) (*entities.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.devicesErr != nil {
		return nil, f.devicesErr
	}
	for _, d := range f.devices {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, &backend.HTTPStatusError{Path: "/dispensadoras", Code: http.StatusNotFound}
}

func (f *fakeBackend) ListAlerts(context.Context, bool) ([]entities.Alert, error) {
	f.alertCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alerts, nil
}

func (f *fakeBackend) ListReadings(_ context.Context, id, _ int) ([]entities.Reading, error) {
	f.readingCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readings[id], nil
}

func (f *fakeBackend) GetStatistics(context.Context) (*entities.Statistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := f.stats
	return &s, nil
}

func (f *fakeBackend) GetStatus(context.Context) (*entities.Health, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &entities.Health{Status: f.status}, nil
}

func (f *fakeBackend) setDevices(devices []entities.Device) {
	f.mu.Lock()
	f.devices = devices
	f.mu.Unlock()
}

func sampleDevices() []entities.Device {
	return []entities.Device{
		{ID: 1, Name: "Lobby", Type: "agua", State: entities.StateActive, FillLevel: 80},
		{ID: 2, Name: "Cafeteria", Type: "cafe", State: entities.StateInactive, FillLevel: 10},
		{ID: 3, Name: "Gym", Type: "agua", State: entities.StateAlert, FillLevel: 45},
	}
}

func newTestApp(t *testing.T, b *fakeBackend) *App {
	t.Helper()
	a := New(Options{
		Backend: b,
		Polling: config.PollingConfig{
			RefreshInterval: time.Hour,
			MonitorInterval: time.Hour,
			FetchTimeout:    time.Second,
		},
	})
	t.Cleanup(a.Close)
	return a
}

// drain collects updates from v until cond holds or the deadline passes.
func drain(t *testing.T, v *Viewer, cond func(map[string]string) bool) map[string]string {
	t.Helper()
	seen := map[string]string{}
	deadline := time.After(2 * time.Second)
	for !cond(seen) {
		select {
		case u := <-v.Updates():
			if u.Region != "" {
				seen[u.Region] = u.HTML
			}
		case <-deadline:
			require.FailNow(t, "timed out waiting for updates", "seen: %v", seen)
		}
	}
	return seen
}
