package app

import (
	"sync/atomic"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/dispensadoras/pkg/dedup"
)

type countingHub struct{ n atomic.Int64 }

func (c *countingHub) TriggerAll() int {
	c.n.Add(1)
	return 1
}

type fakeMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

func TestDeviceEvents_TriggersRefresh(t *testing.T) {
	hub := &countingHub{}
	ev := NewDeviceEvents(hub, dedup.New(time.Minute, 10), NewMetrics(), nil)

	msg := fakeMessage{topic: "dispensadoras/7/eventos", payload: []byte(`{"dispensadora_id":7,"estado":"alerta"}`)}
	require.NoError(t, ev.Handle(msg.Topic(), msg))
	assert.EqualValues(t, 1, hub.n.Load())

	// same device and state inside the window
	require.NoError(t, ev.Handle(msg.Topic(), msg))
	assert.EqualValues(t, 1, hub.n.Load())

	msg.payload = []byte(`{"dispensadora_id":7,"estado":"activa"}`)
	require.NoError(t, ev.Handle(msg.Topic(), msg))
	assert.EqualValues(t, 2, hub.n.Load())
}

func TestDeviceEvents_IDFromTopic(t *testing.T) {
	hub := &countingHub{}
	d := dedup.New(time.Minute, 10)
	ev := NewDeviceEvents(hub, d, nil, nil)

	msg := fakeMessage{topic: "dispensadoras/12/eventos", payload: []byte(`{"estado":"critico"}`)}
	require.NoError(t, ev.Handle(msg.Topic(), msg))
	assert.EqualValues(t, 1, hub.n.Load())
	assert.False(t, d.ShouldProcess("12:critico"), "event keyed by the topic id")
}

func TestDeviceEvents_Invalid(t *testing.T) {
	hub := &countingHub{}
	ev := NewDeviceEvents(hub, nil, NewMetrics(), nil)

	msg := fakeMessage{topic: "dispensadoras/1/eventos", payload: []byte(`not json`)}
	assert.Error(t, ev.Handle(msg.Topic(), msg))
	assert.Zero(t, hub.n.Load())
}

func TestDeviceIDFromTopic(t *testing.T) {
	assert.Equal(t, 5, deviceIDFromTopic("dispensadoras/5/eventos"))
	assert.Equal(t, 0, deviceIDFromTopic("dispensadoras/x/eventos"))
	assert.Equal(t, 0, deviceIDFromTopic(""))
}
