package linkcheck

import (
	"html/template"
	"io"
	"time"

	"github.com/twbeatles/hwpmaster-api/internal/model"
)

// ReportData feeds the HTML report template for one completed check run.
type ReportData struct {
	SourceName  string
	Links       []model.LinkRecord
	ValidCount  int
	BrokenCount int
	GeneratedAt time.Time
}

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"statusClass": func(s model.LinkStatus) string {
		switch {
		case s.Healthy():
			return "valid"
		case s.Unhealthy():
			return "broken"
		default:
			return "unknown"
		}
	},
}).Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Link Check Report</title>
<style>
body { font-family: 'Segoe UI', sans-serif; max-width: 900px; margin: 0 auto; padding: 20px; }
h1 { color: #333; } .summary { background: #f5f5f5; padding: 15px; border-radius: 8px; margin: 20px 0; }
table { width: 100%; border-collapse: collapse; }
th, td { padding: 10px; text-align: left; border-bottom: 1px solid #ddd; }
.valid { color: #22c55e; } .broken { color: #ef4444; } .unknown { color: #f59e0b; }
</style></head><body>
<h1>Link Check Report</h1>
<div class="summary">
<p><strong>Source:</strong> {{.SourceName}}</p>
<p><strong>Total links:</strong> {{len .Links}}</p>
<p><strong>Valid:</strong> <span class="valid">{{.ValidCount}}</span> |
<strong>Broken:</strong> <span class="broken">{{.BrokenCount}}</span></p>
<p><strong>Generated:</strong> {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>
</div>
<table><tr><th>Status</th><th>URL</th><th>Text</th><th>Detail</th></tr>
{{range .Links}}<tr><td class="{{statusClass .Status}}">{{.Status}}</td><td>{{.URL}}</td><td>{{.DisplayText}}</td><td>{{.ErrorDetail}}</td></tr>
{{end}}</table></body></html>
`))

// WriteReport renders the HTML report for a run. Template escaping covers
// URLs and display text coming from untrusted documents.
func WriteReport(w io.Writer, data ReportData) error {
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}
	if data.ValidCount == 0 && data.BrokenCount == 0 {
		data.ValidCount, data.BrokenCount = Tally(data.Links)
	}
	return reportTmpl.Execute(w, data)
}
