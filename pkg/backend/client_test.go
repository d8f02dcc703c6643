package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api", WithTimeout(2*time.Second))
}

func TestListDevices_DecodesBody(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/dispensadoras", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":1,"nombre":"D1","ubicacion":"Hall","serial":"S1","tipo":"agua","nivel_llenado":45.25,"estado":"activa","temperatura":21.5,"humedad":40,"fecha_instalacion":"2024-01-02T10:00:00","fecha_ultimo_mantenimiento":null,"activa":true},
			{"id":2,"nombre":"D2","estado":"fuera_de_servicio","nivel_llenado":10}
		]`))
	})

	devices, err := c.ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, "D1", devices[0].Name)
	assert.Equal(t, entities.StateActive, devices[0].State)
	assert.InDelta(t, 45.25, devices[0].FillLevel, 0.0001)
	assert.Equal(t, 2024, devices[0].InstalledAt.Year())
	assert.True(t, devices[0].LastMaintenance.IsZero())

	// unknown states decode without error
	assert.Equal(t, entities.DeviceState("fuera_de_servicio"), devices[1].State)
	assert.False(t, devices[1].State.Known())
}

func TestListDevices_EmptyBodyArray(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	devices, err := c.ListDevices(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, devices)
	assert.Empty(t, devices)
}

func TestRequest_StatusError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	})

	_, err := c.GetStatistics(context.Background())
	require.Error(t, err)

	var se *HTTPStatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Equal(t, "/estadisticas", se.Path)
	assert.Equal(t, "status", Kind(err))
}

func TestRequest_DecodeError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total_dispensadoras":`))
	})

	_, err := c.GetStatistics(context.Background())
	require.Error(t, err)
	assert.True(t, IsDecode(err))
	assert.Equal(t, "decode", Kind(err))
}

func TestRequest_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, WithTimeout(500*time.Millisecond))
	_, err := c.ListDevices(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Equal(t, "transport", Kind(err))
}

func TestRequest_CancelledContextIsTransport(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ListDevices(ctx)
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestAccessors_Paths(t *testing.T) {
	tests := []struct {
		name      string
		call      func(c *Client) error
		wantPath  string
		wantQuery string
		body      string
	}{
		{
			name:     "device by id",
			call:     func(c *Client) error { _, err := c.GetDevice(context.Background(), 7); return err },
			wantPath: "/api/dispensadoras/7",
			body:     `{"id":7}`,
		},
		{
			name:      "unresolved alerts",
			call:      func(c *Client) error { _, err := c.ListAlerts(context.Background(), false); return err },
			wantPath:  "/api/alertas",
			wantQuery: "resuelta=false",
			body:      `[]`,
		},
		{
			name:      "resolved alerts",
			call:      func(c *Client) error { _, err := c.ListAlerts(context.Background(), true); return err },
			wantPath:  "/api/alertas",
			wantQuery: "resuelta=true",
			body:      `[]`,
		},
		{
			name:      "readings default window",
			call:      func(c *Client) error { _, err := c.ListReadings(context.Background(), 3, 0); return err },
			wantPath:  "/api/lecturas/3",
			wantQuery: "horas=24",
			body:      `[]`,
		},
		{
			name:      "readings custom window",
			call:      func(c *Client) error { _, err := c.ListReadings(context.Background(), 3, 168); return err },
			wantPath:  "/api/lecturas/3",
			wantQuery: "horas=168",
			body:      `[]`,
		},
		{
			name:     "status",
			call:     func(c *Client) error { _, err := c.GetStatus(context.Background()); return err },
			wantPath: "/api/status",
			body:     `{"status":"ok","db":"up"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantPath, r.URL.Path)
				assert.Equal(t, tt.wantQuery, r.URL.RawQuery)
				_, _ = w.Write([]byte(tt.body))
			})
			require.NoError(t, tt.call(c))
		})
	}
}

func TestGetStatus_KeepsExtraFields(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","version":"1.2","database":"connected"}`))
	})

	h, err := c.GetStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, h.OK())
	assert.Equal(t, "1.2", h.Version)
	assert.Contains(t, h.Extra, "database")
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	WithBreaker(2, time.Minute)(c)

	for i := 0; i < 2; i++ {
		_, err := c.ListDevices(context.Background())
		require.Error(t, err)
		assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	}
	assert.Equal(t, "open", c.BreakerState())

	_, err := c.ListDevices(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.Equal(t, int32(2), hits.Load(), "open breaker must not reach the backend")
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	WithBreaker(1, time.Minute)(c)

	for i := 0; i < 3; i++ {
		_, err := c.GetDevice(context.Background(), 99)
		assert.Equal(t, http.StatusNotFound, StatusCode(err))
	}
	assert.Equal(t, "closed", c.BreakerState())
}

func TestBreaker_IgnoresCancelledRequests(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("slow") != "" {
			<-r.Context().Done()
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	WithBreaker(2, time.Minute)(c)

	// requests abandoned by their caller, as on page teardown
	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(10*time.Millisecond, cancel)
		err := c.Request(ctx, "/dispensadoras", url.Values{"slow": {"1"}}, nil)
		require.Error(t, err)
		assert.True(t, IsTransport(err))
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, "closed", c.BreakerState())

	_, err := c.ListDevices(context.Background())
	assert.NoError(t, err)
}

func TestWithHTTPClient_KeepsEarlierTimeout(t *testing.T) {
	c := NewClient("http://example.invalid/api",
		WithTimeout(3*time.Second),
		WithHTTPClient(&http.Client{}),
	)
	assert.Equal(t, 3*time.Second, c.http.GetClient().Timeout)

	c = NewClient("http://example.invalid/api",
		WithTimeout(3*time.Second),
		WithHTTPClient(&http.Client{Timeout: time.Second}),
	)
	assert.Equal(t, time.Second, c.http.GetClient().Timeout)
}
