package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
	"github.com/LeonardoBeccarini/dispensadoras/internal/projection"
)

func TestReporter_Consumption(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	b := &fakeBackend{
		devices: sampleDevices(),
		readings: map[int][]entities.Reading{
			1: {{WaterUsed: 1.5, Timestamp: entities.NewTimestamp(now.Add(-time.Hour))}},
			3: {{WaterUsed: 2, Timestamp: entities.NewTimestamp(now.Add(-2 * time.Hour))}},
		},
	}
	r := NewReporter(b, 0)
	r.now = func() time.Time { return now }

	rep, ok, err := r.Build(context.Background(), "consumo", "dia")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, projection.KindConsumption, rep.Kind)
	assert.EqualValues(t, 3, b.readingCalls.Load(), "one readings request per device")
	assert.Zero(t, b.alertCalls.Load())
}

func TestReporter_PerformanceSkipsReadings(t *testing.T) {
	b := &fakeBackend{devices: sampleDevices()}
	rep, ok, err := NewReporter(b, 0).Build(context.Background(), "rendimiento", "")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, rep.Performance)
	assert.Zero(t, b.readingCalls.Load())
	assert.Zero(t, b.alertCalls.Load())
}

func TestReporter_AlertsFetchesAlerts(t *testing.T) {
	b := &fakeBackend{devices: sampleDevices()}
	_, ok, err := NewReporter(b, 0).Build(context.Background(), "alertas", "semana")
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 1, b.alertCalls.Load())
}

func TestReporter_UnknownKind(t *testing.T) {
	b := &fakeBackend{devices: sampleDevices()}
	_, ok, err := NewReporter(b, 0).Build(context.Background(), "ventas", "dia")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, b.deviceCalls.Load())
}
