package app

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
	"github.com/LeonardoBeccarini/dispensadoras/internal/projection"
	"github.com/LeonardoBeccarini/dispensadoras/internal/view"
	"github.com/LeonardoBeccarini/dispensadoras/pkg/backend"
)

// detailHours is the lookback of the readings shown in a device detail.
const detailHours = 24

func (a *App) routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/ws", a.handleWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", a.health.Healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", a.health.Readyz).Methods(http.MethodGet)
	r.Handle("/metrics", a.metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dispensadoras/filtro", a.handleFilter).Methods(http.MethodGet)
	api.HandleFunc("/dispensadoras/{id:[0-9]+}", a.handleDetail).Methods(http.MethodGet)
	api.HandleFunc("/reportes", a.handleReport).Methods(http.MethodGet)

	for _, p := range a.registry.Paths() {
		r.HandleFunc(p, a.handlePage).Methods(http.MethodGet)
	}
	r.HandleFunc("/index.html", a.handlePage).Methods(http.MethodGet)
	return r
}

func (a *App) handlePage(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := a.registry.Resolve(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	var nav []navItem
	for _, p := range a.registry.Paths() {
		c, _ := a.registry.Resolve(p)
		nav = append(nav, navItem{Path: p, Title: c.Title(), Active: p == ctrl.ID()})
	}

	var buf bytes.Buffer
	if err := shellTmpl.Execute(&buf, newShell(ctrl, nav, a.hub.Snapshot(ctrl.ID()))); err != nil {
		a.logger.Error("render page shell", zap.String("page", ctrl.ID()), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, buf.String())
}

// handleFilter answers only the requester; mounted pages are not touched.
func (a *App) handleFilter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := projection.Criteria{
		Status: entities.DeviceState(q.Get("estado")),
		Type:   q.Get("tipo"),
	}

	devices, err := a.backend.ListDevices(r.Context())
	if err != nil {
		a.logger.Warn("filter: list devices", zap.String("kind", backend.Kind(err)), zap.Error(err))
		writeHTML(w, http.StatusBadGateway, view.DeviceGridErrorHTML())
		return
	}

	html, err := view.DeviceGridHTML(projection.Filter(devices, criteria))
	if err != nil {
		a.logger.Error("filter: render grid", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, html)
}

func (a *App) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	d, err := a.backend.GetDevice(r.Context(), id)
	if err != nil {
		if backend.StatusCode(err) == http.StatusNotFound {
			http.Error(w, "dispensadora no encontrada", http.StatusNotFound)
			return
		}
		a.logger.Warn("detail: get device", zap.Int("id", id), zap.Error(err))
		http.Error(w, "backend unavailable", http.StatusBadGateway)
		return
	}

	readings, err := a.backend.ListReadings(r.Context(), id, detailHours)
	if err != nil {
		a.logger.Warn("detail: list readings", zap.Int("id", id), zap.Error(err))
		http.Error(w, "backend unavailable", http.StatusBadGateway)
		return
	}

	html, err := view.DeviceDetailHTML(*d, readings)
	if err != nil {
		a.logger.Error("detail: render", zap.Int("id", id), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, html)
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rep, ok, err := a.reporter.Build(r.Context(), q.Get("tipo"), q.Get("periodo"))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		a.logger.Warn("report: build", zap.String("tipo", q.Get("tipo")), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	if q.Get("format") != "html" {
		writeJSON(w, http.StatusOK, rep)
		return
	}
	html, err := view.ReportHTML(rep)
	if err != nil {
		a.logger.Error("report: render", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, html)
}

func writeHTML(w http.ResponseWriter, code int, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(html))
}
