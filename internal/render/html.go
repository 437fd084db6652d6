package render

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"pilemap/internal/summary"
)

type PageOptions struct {
	Title       string
	Image       string
	Width       float64
	Height      float64
	Interactive bool // include refresh, search and click-to-map wiring
	GeneratedAt time.Time
}

// HTMLSurface collects markers like MemorySurface and writes them out as a
// standalone page over the drawing image.
type HTMLSurface struct {
	MemorySurface
}

func NewHTMLSurface() *HTMLSurface {
	return &HTMLSurface{}
}

type pageData struct {
	PageOptions
	Markers []Marker
	Summary summary.Summary
}

func (h *HTMLSurface) WriteTo(w io.Writer, opts PageOptions) error {
	if opts.Title == "" {
		opts.Title = "Pile Status"
	}
	data := pageData{
		PageOptions: opts,
		Markers:     h.Markers(),
		Summary:     h.Summary(),
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"px": func(v float64) string { return fmt.Sprintf("%.1fpx", v) },
}).Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Calibri, Arial, sans-serif; color: #1f1f1f; margin: 16px; }
#toolbar { margin-bottom: 8px; display: flex; gap: 8px; align-items: center; }
#loading { display: none; color: #666; }
#drawing-container { position: relative; overflow: auto; border: 1px solid #ccc; }
#drawing-img { display: block; width: 100%; height: 100%; object-fit: contain; }
.pile-highlight { position: absolute; transform: translate(-50%, -50%); min-width: 22px; padding: 2px 4px;
  border-radius: 11px; font-size: 11px; text-align: center; color: #fff; cursor: default; }
.status-completed { background: #2e7d32; }
.status-ongoing { background: #f9a825; color: #1f1f1f; }
.status-pending { background: #c62828; }
.pile-tooltip { display: none; position: absolute; left: 50%; top: 120%; transform: translateX(-50%); z-index: 10;
  background: #fff; color: #1f1f1f; border: 1px solid #999; padding: 4px 6px; white-space: pre; text-align: left; }
.pile-highlight:hover .pile-tooltip { display: block; }
@keyframes pulse { 0% { transform: translate(-50%, -50%) scale(1); } 50% { transform: translate(-50%, -50%) scale(1.6); } 100% { transform: translate(-50%, -50%) scale(1); } }
#status-summary span { margin-right: 12px; }
</style>
</head>
<body>
<div id="toolbar">
{{- if .Interactive}}
  <input id="search-box" type="search" placeholder="Search pile ID">
  <button id="refresh-btn" type="button">Refresh</button>
  <span id="loading">Loading...</span>
{{- end}}
  <div id="status-summary">
    <span>Total: {{.Summary.Total}}</span>
    <span class="summary-completed">Completed: {{.Summary.Completed}} ({{.Summary.CompletedPct}}%)</span>
    <span class="summary-ongoing">Ongoing: {{.Summary.Ongoing}} ({{.Summary.OngoingPct}}%)</span>
    <span class="summary-pending">Pending: {{.Summary.Pending}} ({{.Summary.PendingPct}}%)</span>
  </div>
</div>
<div id="drawing-container" style="width: {{px .Width}}; height: {{px .Height}};">
  <img id="drawing-img" src="{{.Image}}" alt="drawing">
{{- range .Markers}}
  <div class="{{.Class}}" data-id="{{.ID}}" style="left: {{px .X}}; top: {{px .Y}};">{{.Label}}<div class="pile-tooltip">{{.Tooltip}}</div></div>
{{- end}}
</div>
{{- if not .GeneratedAt.IsZero}}
<p><small>Generated {{.GeneratedAt.Format "2006-01-02 15:04"}}</small></p>
{{- end}}
{{- if .Interactive}}
<script>
document.getElementById('search-box').addEventListener('input', function (e) {
  if (!e.target.value.trim()) return;
  var marker = document.querySelector('.pile-highlight');
  if (marker) {
    marker.scrollIntoView({ behavior: 'smooth', block: 'center' });
    marker.style.animation = 'pulse 0.5s 3';
  }
});
document.getElementById('refresh-btn').addEventListener('click', function () {
  document.getElementById('loading').style.display = 'inline';
  fetch('/api/refresh', { method: 'POST' }).finally(function () { window.location.reload(); });
});
document.getElementById('drawing-img').addEventListener('click', function (e) {
  var rect = e.target.getBoundingClientRect();
  var id = window.prompt('Enter pile ID for this location:');
  if (!id) return;
  fetch('/api/mappings', {
    method: 'POST',
    headers: { 'Content-Type': 'application/json' },
    body: JSON.stringify({ id: id, x: e.clientX - rect.left, y: e.clientY - rect.top })
  }).then(function () { window.location.reload(); });
});
</script>
{{- end}}
</body>
</html>
`
