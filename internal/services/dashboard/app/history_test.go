package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/dispensadoras/internal/pages"
)

type fakeWriteAPI struct {
	api.WriteAPI
	mu      sync.Mutex
	points  []*write.Point
	errs    chan error
	flushed int
}

func newFakeWriteAPI() *fakeWriteAPI {
	return &fakeWriteAPI{errs: make(chan error, 1)}
}

func (f *fakeWriteAPI) WritePoint(p *write.Point) {
	f.mu.Lock()
	f.points = append(f.points, p)
	f.mu.Unlock()
}

func (f *fakeWriteAPI) Errors() <-chan error { return f.errs }

func (f *fakeWriteAPI) Flush() {
	f.mu.Lock()
	f.flushed++
	f.mu.Unlock()
}

func (f *fakeWriteAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.points)
}

func TestHistory_RecordDevices(t *testing.T) {
	w := newFakeWriteAPI()
	h := NewHistory(w, nil, nil)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return at }

	h.RecordDevices(sampleDevices())
	require.Equal(t, 3, w.count())

	p := w.points[0]
	assert.Equal(t, historyMeasurement, p.Name())
	assert.Equal(t, at, p.Time())
	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, "1", tags["dispensadora_id"])
	assert.Equal(t, "activa", tags["estado"])
	fields := map[string]any{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	assert.Equal(t, 80.0, fields["nivel_llenado"])

	h.RecordDevices(nil)
	assert.Equal(t, 3, w.count())
}

func TestHistory_LastErrorAge(t *testing.T) {
	w := newFakeWriteAPI()
	h := NewHistory(w, nil, nil)
	assert.Greater(t, h.LastErrorAge(), time.Hour)

	w.errs <- errors.New("bucket not found")
	require.Eventually(t, func() bool { return h.LastErrorAge() < time.Minute },
		time.Second, 5*time.Millisecond)
}

func TestHistory_NilIsNoop(t *testing.T) {
	var h *History
	h.RecordDevices(sampleDevices())
	h.Flush()
	assert.Greater(t, h.LastErrorAge(), time.Hour)
}

func TestHistory_FedByPolling(t *testing.T) {
	w := newFakeWriteAPI()
	a := New(Options{Backend: &fakeBackend{devices: sampleDevices()}, History: NewHistory(w, nil, nil)})

	v := NewViewer("v")
	_, err := a.Hub().Join(pages.PathMonitoring, v)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return w.count() == 3 }, 2*time.Second, 10*time.Millisecond)

	a.Close()
	w.mu.Lock()
	assert.Equal(t, 1, w.flushed)
	w.mu.Unlock()
}
