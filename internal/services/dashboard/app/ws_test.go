package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/dispensadoras/internal/pages"
	"github.com/LeonardoBeccarini/dispensadoras/internal/view"
)

func dialPage(t *testing.T, srv *httptest.Server, page string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?page=" + page
	return websocket.DefaultDialer.Dial(url, nil)
}

func TestWS_PushesRegionsAndUnmountsOnClose(t *testing.T) {
	a := newTestApp(t, &fakeBackend{devices: sampleDevices()})
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	conn, _, err := dialPage(t, srv, pages.PathMonitoring)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var u view.Update
	require.NoError(t, conn.ReadJSON(&u))
	assert.Equal(t, view.RegionDeviceGrid, u.Region)
	assert.Equal(t, 3, strings.Count(u.HTML, "dispensadora-card"))
	assert.Equal(t, []string{pages.PathMonitoring}, a.Hub().Mounted())

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return len(a.Hub().Mounted()) == 0 },
		2*time.Second, 10*time.Millisecond)
}

func TestWS_DashboardCharts(t *testing.T) {
	a := newTestApp(t, &fakeBackend{devices: sampleDevices()})
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	conn, _, err := dialPage(t, srv, pages.PathDashboard)
	require.NoError(t, err)
	defer conn.Close()

	charts := map[string]bool{}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for len(charts) < len(view.ChartCanvases) {
		var u view.Update
		require.NoError(t, conn.ReadJSON(&u))
		if u.Chart != "" && u.Config != nil {
			charts[u.Chart] = true
		}
	}
	for _, c := range view.ChartCanvases {
		assert.True(t, charts[c], c)
	}
}

func TestWS_UnknownPage(t *testing.T) {
	a := newTestApp(t, &fakeBackend{})
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	_, resp, err := dialPage(t, srv, "/nope")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, a.Hub().Mounted())
}
