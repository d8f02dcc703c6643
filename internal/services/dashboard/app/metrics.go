package app

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LeonardoBeccarini/dispensadoras/pkg/backend"
)

const namespace = "dispensadoras"

// Metrics holds the dashboard collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	mountedPages  prometheus.Gauge
	viewers       prometheus.Gauge
	deviceEvents  *prometheus.CounterVec
	historyPoints prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Polling cycles by page, task and result (ok, transport, status, decode, other).",
		},
		[]string{"page", "task", "result"},
	)
	m.fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of polling cycles in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"page", "task"},
	)
	m.mountedPages = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mounted_pages",
		Help:      "Pages with at least one connected viewer.",
	})
	m.viewers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "viewers",
		Help:      "Connected WebSocket viewers.",
	})
	m.deviceEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "device_events_total",
			Help:      "Device events received over MQTT by outcome (refresh, duplicate, invalid).",
		},
		[]string{"outcome"},
	)
	m.historyPoints = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "history_points_total",
		Help:      "Device snapshots queued for InfluxDB.",
	})

	m.registry.MustRegister(
		m.fetches, m.fetchDuration, m.mountedPages, m.viewers, m.deviceEvents, m.historyPoints,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCycle matches scheduler.Hooks.OnCycle.
func (m *Metrics) ObserveCycle(page, task string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(page, task, backend.Kind(err)).Inc()
	m.fetchDuration.WithLabelValues(page, task).Observe(took.Seconds())
}

func (m *Metrics) setMounted(pages, viewers int) {
	if m == nil {
		return
	}
	m.mountedPages.Set(float64(pages))
	m.viewers.Set(float64(viewers))
}

func (m *Metrics) deviceEvent(outcome string) {
	if m == nil {
		return
	}
	m.deviceEvents.WithLabelValues(outcome).Inc()
}

func (m *Metrics) historyPoint(n int) {
	if m == nil {
		return
	}
	m.historyPoints.Add(float64(n))
}
