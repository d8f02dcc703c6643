package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "http://localhost:5000/api", cfg.Backend.URL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.EqualValues(t, 5, cfg.Backend.BreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.Polling.RefreshInterval)
	assert.Equal(t, 10*time.Second, cfg.Polling.MonitorInterval)
	assert.Equal(t, 720*time.Hour, cfg.Reports.MaintenanceEvery)
	assert.False(t, cfg.Influx.Enabled())
	assert.False(t, cfg.MQTT.Enabled())
	assert.Empty(t, cfg.Server.GRPCHealthPort)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DISPENSADORAS_SERVER_PORT", "9090")
	t.Setenv("DISPENSADORAS_BACKEND_URL", "http://backend:5000/api/")
	t.Setenv("DISPENSADORAS_POLLING_MONITOR_INTERVAL", "2s")
	t.Setenv("DISPENSADORAS_SERVER_CORS_ORIGINS", "http://a.local, http://b.local")
	t.Setenv("DISPENSADORAS_MQTT_HOST", "broker")

	cfg, err := Load(noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "http://backend:5000/api", cfg.Backend.URL)
	assert.Equal(t, 2*time.Second, cfg.Polling.MonitorInterval)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.MQTT.Enabled())
	assert.Equal(t, 1883, cfg.MQTT.Port)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DISPENSADORAS_INFLUX_URL=http://influx:8086\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DISPENSADORAS_INFLUX_URL") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Influx.Enabled())
	assert.Equal(t, "dispensadoras", cfg.Influx.Bucket)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"relative backend url", "DISPENSADORAS_BACKEND_URL", "/api"},
		{"zero monitor interval", "DISPENSADORAS_POLLING_MONITOR_INTERVAL", "0s"},
		{"negative fetch timeout", "DISPENSADORAS_POLLING_FETCH_TIMEOUT", "-1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load(noEnvFile(t))
			assert.Error(t, err)
		})
	}
}
