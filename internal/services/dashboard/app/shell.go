package app

import (
	"html/template"

	"github.com/LeonardoBeccarini/dispensadoras/internal/pages"
	"github.com/LeonardoBeccarini/dispensadoras/internal/view"
)

type shellRegion struct {
	ID      string
	Element string
	HTML    template.HTML
}

type navItem struct {
	Path   string
	Title  string
	Active bool
}

type shellData struct {
	Title   string
	Path    string
	Nav     []navItem
	Regions []shellRegion
}

var elements = map[pages.RegionKind]string{
	pages.KindText:   "text",
	pages.KindBar:    "bar",
	pages.KindRows:   "rows",
	pages.KindBlock:  "block",
	pages.KindCanvas: "canvas",
}

// newShell lays out the regions of ctrl, pre-filled with the current content
// when the page is already mounted. Fragments come from the view templates
// and are already escaped.
func newShell(ctrl pages.Controller, nav []navItem, snapshot []view.Update) shellData {
	content := make(map[string]string, len(snapshot))
	for _, u := range snapshot {
		if u.Region != "" {
			content[u.Region] = u.HTML
		}
	}
	data := shellData{Title: ctrl.Title(), Path: ctrl.ID(), Nav: nav}
	for _, r := range ctrl.Regions() {
		data.Regions = append(data.Regions, shellRegion{
			ID:      r.ID,
			Element: elements[r.Kind],
			HTML:    template.HTML(content[r.ID]),
		})
	}
	return data
}

var shellTmpl = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
</head>
<body data-page="{{.Path}}">
<nav>{{range .Nav}}<a href="{{.Path}}"{{if .Active}} class="active"{{end}}>{{.Title}}</a> {{end}}</nav>
<main>
{{range .Regions}}{{if eq .Element "rows"}}<table class="table"><tbody id="{{.ID}}">{{.HTML}}</tbody></table>
{{else if eq .Element "text"}}<span id="{{.ID}}">{{.HTML}}</span>
{{else if eq .Element "bar"}}<div class="progress" id="{{.ID}}">{{.HTML}}</div>
{{else if eq .Element "canvas"}}<div class="chart-container"><canvas id="{{.ID}}"></canvas></div>
{{else}}<div id="{{.ID}}">{{.HTML}}</div>
{{end}}{{end}}
</main>
<script>
(function () {
  var charts = {};
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws?page=" + encodeURIComponent({{.Path}}));
  ws.onmessage = function (ev) {
    var m = JSON.parse(ev.data);
    if (m.region) {
      var el = document.getElementById(m.region);
      if (el) { el.innerHTML = m.html || ""; }
      return;
    }
    if (m.chart) {
      if (charts[m.chart]) { charts[m.chart].destroy(); delete charts[m.chart]; }
      var canvas = document.getElementById(m.chart);
      if (!m.destroyed && m.config && canvas && window.Chart) {
        charts[m.chart] = new Chart(canvas.getContext("2d"), m.config);
      }
    }
  };
})();
</script>
</body>
</html>
`))
