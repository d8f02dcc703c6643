package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/LeonardoBeccarini/dispensadoras/pkg/backend"
)

// GRPCServiceName is the service name reported by the gRPC health server
// besides the empty overall name.
const GRPCServiceName = "dispensadoras.Dashboard"

const (
	readyTimeout      = 3 * time.Second
	historyErrorGrace = 30 * time.Second
)

type breakerStater interface {
	BreakerState() string
}

// Health serves liveness and readiness for HTTP and gRPC probes.
type Health struct {
	backend backend.Backend
	mqtt    mqtt.Client
	history *History
	hub     *Hub
	logger  *zap.Logger
}

func NewHealth(b backend.Backend, hub *Hub, history *History, mqttClient mqtt.Client, logger *zap.Logger) *Health {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Health{backend: b, hub: hub, history: history, mqtt: mqttClient, logger: logger}
}

func (h *Health) breakerState() string {
	if bs, ok := h.backend.(breakerStater); ok {
		return bs.BreakerState()
	}
	return "disabled"
}

type healthStatus struct {
	Status          string   `json:"status"`
	Breaker         string   `json:"backend_breaker"`
	MQTTConnected   *bool    `json:"mqtt_connected,omitempty"`
	LastWriteErrorS *float64 `json:"history_last_error_age_sec,omitempty"`
	MountedPages    []string `json:"mounted_pages"`
	Viewers         int      `json:"viewers"`
}

// Healthz always answers 200; status is "degraded" when a dependency is
// impaired (breaker open, broker lost, recent history write errors).
func (h *Health) Healthz(w http.ResponseWriter, _ *http.Request) {
	st := healthStatus{
		Status:       "ok",
		Breaker:      h.breakerState(),
		MountedPages: h.hub.Mounted(),
		Viewers:      h.hub.Viewers(),
	}
	if st.Breaker == "open" {
		st.Status = "degraded"
	}
	if h.mqtt != nil {
		connected := h.mqtt.IsConnectionOpen()
		st.MQTTConnected = &connected
		if !connected {
			st.Status = "degraded"
		}
	}
	if h.history != nil {
		age := h.history.LastErrorAge()
		secs := age.Seconds()
		st.LastWriteErrorS = &secs
		if age < historyErrorGrace {
			st.Status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, st)
}

// Check reports whether the backend answers /status as healthy.
func (h *Health) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	st, err := h.backend.GetStatus(ctx)
	if err != nil {
		return err
	}
	if !st.OK() {
		return &backend.HTTPStatusError{Path: "/status", Code: http.StatusServiceUnavailable, Body: st.Status}
	}
	return nil
}

// Readyz answers 200 only when the backend is healthy.
func (h *Health) Readyz(w http.ResponseWriter, r *http.Request) {
	type resp struct {
		Ready bool   `json:"ready"`
		Error string `json:"error,omitempty"`
	}
	if err := h.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, resp{Ready: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp{Ready: true})
}

// ServeGRPC runs the standard gRPC health service on lis, refreshing the
// serving status every interval, until ctx is done.
func (h *Health) ServeGRPC(ctx context.Context, lis net.Listener, interval time.Duration) error {
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	update := func() {
		status := healthpb.HealthCheckResponse_SERVING
		if err := h.Check(ctx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", status)
		hs.SetServingStatus(GRPCServiceName, status)
	}
	update()

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				hs.Shutdown()
				srv.GracefulStop()
				return
			case <-t.C:
				update()
			}
		}
	}()

	h.logger.Info("grpc health listening", zap.String("addr", lis.Addr().String()))
	if err := srv.Serve(lis); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
