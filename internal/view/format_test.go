package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
)

func TestStatusColor(t *testing.T) {
	tests := []struct {
		state entities.DeviceState
		want  string
	}{
		{entities.StateActive, "#10b981"},
		{entities.StateInactive, "#6b7280"},
		{entities.StateAlert, "#f59e0b"},
		{entities.StateCritical, "#ef4444"},
		{entities.StateMaintenance, FallbackColor},
		{"fuera_de_servicio", "#2563eb"},
		{"", "#2563eb"},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusColor(tt.state))
		})
	}
}

func TestStatusBadge(t *testing.T) {
	assert.Equal(t, `<span class="badge-status badge-activa">activa</span>`, string(StatusBadge(entities.StateActive)))
	assert.Equal(t,
		`<span class="badge-status badge-&lt;b&gt;">&lt;b&gt;</span>`,
		string(StatusBadge("<b>")))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "45.0", FormatPercent(45))
	assert.Equal(t, "66.7", FormatPercent(66.666))
	assert.Equal(t, "0.0", FormatPercent(0))
}

func TestSeverityClass(t *testing.T) {
	assert.Equal(t, "alert-danger", SeverityClass(entities.SeverityCritical))
	assert.Equal(t, "alert-warning", SeverityClass(entities.SeverityMedium))
	assert.Equal(t, "alert-info", SeverityClass(entities.SeverityHigh))
	assert.Equal(t, "alert-info", SeverityClass(entities.SeverityLow))
}
