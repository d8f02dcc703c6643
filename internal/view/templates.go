package view

import (
	"html/template"

	"github.com/LeonardoBeccarini/dispensadoras/internal/model/entities"
)

var funcs = template.FuncMap{
	"color":    StatusColor,
	"badge":    StatusBadge,
	"pct":      FormatPercent,
	"num":      FormatNumber,
	"severity": SeverityClass,
	"date":     func(t entities.Timestamp) string { return FormatDate(t.Time) },
	"low":      LowLevel,
	"liters":   func(v float64) string { return formatFixed(v, 2) },
}

const tableTmpl = `{{define "table"}}{{if not .}}<tr><td colspan="6" class="text-center text-muted">No hay dispensadoras disponibles</td></tr>{{else}}{{range .}}<tr>
<td><strong>{{.Name}}</strong></td>
<td>{{.Location}}</td>
<td><div class="progress"><div class="progress-bar" role="progressbar" aria-valuenow="{{num .FillLevel}}" aria-valuemin="0" aria-valuemax="100" style="width: {{num .ClampedFillLevel}}%; background-color: {{color .State}};">{{pct .FillLevel}}%</div></div></td>
<td>{{num .Temperature}}°C</td>
<td>{{badge .State}}</td>
<td><button class="btn btn-sm btn-primary" data-dispensadora="{{.ID}}"><i class="fas fa-eye"></i></button></td>
</tr>
{{end}}{{end}}{{end}}`

const alertsTmpl = `{{define "alerts"}}{{if not .}}<p class="text-success text-center">✅ No hay alertas pendientes</p>{{else}}{{range .}}<div class="alert {{severity .Severity}} mb-2">
<strong>{{.Type}}</strong>
<p class="mb-0">{{.Description}}</p>
<small>Severidad: {{.Severity}}</small>
</div>
{{end}}{{end}}{{end}}`

const gridTmpl = `{{define "grid"}}{{if not .}}<p class="text-muted text-center w-100">No se encontraron dispensadoras</p>{{else}}{{range .}}<div class="dispensadora-card{{if low .}} pulse{{end}}">
<div class="dispensadora-header"><h5 class="mb-2">{{.Name}}</h5>{{badge .State}}</div>
<div class="dispensadora-info">
<div class="dispensadora-row"><span class="dispensadora-label"><i class="fas fa-map-marker-alt"></i> Ubicación</span><span class="dispensadora-value">{{.Location}}</span></div>
<div class="dispensadora-row"><span class="dispensadora-label"><i class="fas fa-barcode"></i> Serial</span><span class="dispensadora-value">{{.Serial}}</span></div>
<div class="dispensadora-row"><span class="dispensadora-label"><i class="fas fa-tag"></i> Tipo</span><span class="dispensadora-value text-capitalize">{{.Type}}</span></div>
<div class="dispensadora-row"><span class="dispensadora-label"><i class="fas fa-fill"></i> Nivel</span><span class="dispensadora-value">{{pct .FillLevel}}%</span></div>
<div class="mb-3"><div class="progress"><div class="progress-bar" role="progressbar" aria-valuenow="{{num .FillLevel}}" aria-valuemin="0" aria-valuemax="100" style="width: {{num .ClampedFillLevel}}%; background-color: {{color .State}};"></div></div></div>
<div class="dispensadora-row"><span class="dispensadora-label"><i class="fas fa-thermometer-half"></i> Temp</span><span class="dispensadora-value">{{num .Temperature}}°C</span></div>
<div class="dispensadora-row"><span class="dispensadora-label"><i class="fas fa-water"></i> Humedad</span><span class="dispensadora-value">{{num .Humidity}}%</span></div>
<div class="mt-3"><button class="btn btn-sm btn-primary w-100" data-dispensadora="{{.ID}}"><i class="fas fa-info-circle"></i> Ver Detalles</button></div>
</div>
</div>
{{end}}{{end}}{{end}}`

const detailTmpl = `{{define "detail"}}<div class="dispensadora-detalle" data-dispensadora="{{.Device.ID}}">
<h4>{{.Device.Name}} {{badge .Device.State}}</h4>
<dl class="row">
<dt class="col-sm-4">Ubicación</dt><dd class="col-sm-8">{{.Device.Location}}</dd>
<dt class="col-sm-4">Serial</dt><dd class="col-sm-8">{{.Device.Serial}}</dd>
<dt class="col-sm-4">Tipo</dt><dd class="col-sm-8 text-capitalize">{{.Device.Type}}</dd>
<dt class="col-sm-4">Nivel</dt><dd class="col-sm-8">{{pct .Device.FillLevel}}%</dd>
<dt class="col-sm-4">Capacidad</dt><dd class="col-sm-8">{{num .Device.CapacityLiters}} L</dd>
<dt class="col-sm-4">Instalación</dt><dd class="col-sm-8">{{date .Device.InstalledAt}}</dd>
<dt class="col-sm-4">Último mantenimiento</dt><dd class="col-sm-8">{{date .Device.LastMaintenance}}</dd>
</dl>
{{if .Readings}}<table class="table table-sm">
<thead><tr><th>Fecha</th><th>Nivel</th><th>Temp</th><th>Humedad</th><th>Presión</th><th>Consumo</th></tr></thead>
<tbody>{{range .Readings}}<tr><td>{{date .Timestamp}}</td><td>{{pct .FillLevel}}%</td><td>{{num .Temperature}}°C</td><td>{{num .Humidity}}%</td><td>{{num .Pressure}}</td><td>{{liters .WaterUsed}} L</td></tr>{{end}}</tbody>
</table>{{else}}<p class="text-muted">Sin lecturas en las últimas 24 horas</p>{{end}}
</div>{{end}}`

const reportTmpl = `{{define "report"}}<div class="reporte" data-tipo="{{.Kind}}">
<h5 class="reporte-header"><i class="fas fa-file-pdf"></i> {{.Title}}</h5>
{{with .Consumption}}<div class="row">{{range .Devices}}<div class="col-md-4 mb-3"><div class="stat-card"><div class="stat-label">{{.Name}}</div><div class="stat-number">{{liters .Liters}}L</div><small class="text-muted">Ubicación: {{.Location}}</small></div></div>{{end}}</div>
<div class="alert alert-info"><strong>Consumo Total: </strong>{{liters .TotalLiters}} Litros</div>{{end}}
{{with .Alerts}}<div class="alert alert-warning"><strong>⚠️ Resumen de Alertas</strong><p class="mb-0">Se han registrado un total de {{.Total}} alertas en el período seleccionado.</p></div>
<div class="row"><div class="col-md-4 mb-3"><div class="stat-card"><div class="stat-icon">🔴</div><div class="stat-label">Alertas Críticas</div><div class="stat-number">{{.Critical}}</div></div></div><div class="col-md-4 mb-3"><div class="stat-card"><div class="stat-icon">🟡</div><div class="stat-label">Alertas Moderadas</div><div class="stat-number">{{.Moderate}}</div></div></div><div class="col-md-4 mb-3"><div class="stat-card"><div class="stat-icon">🔵</div><div class="stat-label">Otras</div><div class="stat-number">{{.Other}}</div></div></div></div>{{end}}
{{with .Maintenance}}<div class="alert alert-info"><strong>🔧 Estado de Mantenimiento</strong></div>
<div class="row"><div class="col-md-4 mb-3"><div class="stat-card"><div class="stat-icon">🔧</div><div class="stat-label">En Mantenimiento</div><div class="stat-number">{{.InMaintenance}}</div></div></div><div class="col-md-4 mb-3"><div class="stat-card"><div class="stat-icon">⏰</div><div class="stat-label">Mantenimientos Vencidos</div><div class="stat-number">{{.Overdue}}</div></div></div><div class="col-md-4 mb-3"><div class="stat-card"><div class="stat-icon">📅</div><div class="stat-label">Próximo Mantenimiento</div><div class="stat-number">{{if .HasNext}}{{.NextDueDays}} días{{else}}-{{end}}</div></div></div></div>{{end}}
{{with .Performance}}<div class="alert alert-success"><strong>📊 Rendimiento del Sistema</strong></div>
<div class="row"><div class="col-md-6 mb-3"><div class="stat-card"><div class="stat-icon">📦</div><div class="stat-label">Total de Dispensadoras</div><div class="stat-number">{{.Total}}</div></div></div><div class="col-md-6 mb-3"><div class="stat-card"><div class="stat-icon">✅</div><div class="stat-label">Operacional</div><div class="stat-number">{{pct .OperationalPercent}}%</div></div></div></div>{{end}}
</div>{{end}}`

var templates = template.Must(template.New("view").Funcs(funcs).Parse(
	tableTmpl + alertsTmpl + gridTmpl + detailTmpl + reportTmpl,
))
