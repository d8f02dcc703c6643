package app

import (
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/dispensadoras/internal/config"
	"github.com/LeonardoBeccarini/dispensadoras/internal/pages"
	"github.com/LeonardoBeccarini/dispensadoras/internal/scheduler"
	"github.com/LeonardoBeccarini/dispensadoras/pkg/backend"
)

// Options are the collaborators of an App. Only Backend is required.
type Options struct {
	Backend  backend.Backend
	Registry *pages.Registry
	Metrics  *Metrics
	History  *History
	MQTT     mqtt.Client

	Polling          config.PollingConfig
	CORSOrigins      []string
	MaintenanceEvery time.Duration
	Logger           *zap.Logger
}

// App is the dashboard service: page hub, HTTP routes and probes.
type App struct {
	backend  backend.Backend
	registry *pages.Registry
	sched    *scheduler.Scheduler
	hub      *Hub
	reporter *Reporter
	health   *Health
	metrics  *Metrics
	history  *History
	upgrader websocket.Upgrader
	origins  []string
	logger   *zap.Logger
}

func New(o Options) *App {
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := o.Registry
	if registry == nil {
		registry = pages.NewRegistry()
	}
	metrics := o.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	fetchTimeout := o.Polling.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = scheduler.DefaultFetchTimeout
	}
	sched := scheduler.New(
		scheduler.WithLogger(logger.Named("scheduler")),
		scheduler.WithFetchTimeout(fetchTimeout),
		scheduler.WithHooks(scheduler.Hooks{OnCycle: metrics.ObserveCycle}),
	)

	deps := pages.Deps{
		Backend:         o.Backend,
		RefreshInterval: o.Polling.RefreshInterval,
		MonitorInterval: o.Polling.MonitorInterval,
		Logger:          logger.Named("pages"),
	}
	if o.History != nil {
		deps.OnDevices = o.History.RecordDevices
	}
	hub := NewHub(registry, sched, deps, metrics, logger.Named("hub"))

	return &App{
		backend:  o.Backend,
		registry: registry,
		sched:    sched,
		hub:      hub,
		reporter: NewReporter(o.Backend, o.MaintenanceEvery),
		health:   NewHealth(o.Backend, hub, o.History, o.MQTT, logger.Named("health")),
		metrics:  metrics,
		history:  o.History,
		upgrader: newUpgrader(o.CORSOrigins),
		origins:  o.CORSOrigins,
		logger:   logger,
	}
}

func (a *App) Hub() *Hub           { return a.hub }
func (a *App) Health() *Health     { return a.health }
func (a *App) Metrics() *Metrics   { return a.metrics }
func (a *App) Reporter() *Reporter { return a.reporter }

// Handler returns the routes wrapped in the CORS middleware.
func (a *App) Handler() http.Handler {
	origins := a.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(a.routes())
}

// Close tears down every mounted page and flushes pending history points.
func (a *App) Close() {
	a.hub.Close()
	a.history.Flush()
}
