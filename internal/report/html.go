package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"

	"github.com/eamoe/jira-flow-metrics/internal/metrics"
)

// Chart is one named Mermaid diagram embedded in the HTML report.
type Chart struct {
	Title string
	Body  string
}

// reportScript stays readable here; it is minified on every render.
const reportScript = `
mermaid.initialize({ startOnLoad: true, theme: "neutral" });

document.addEventListener("DOMContentLoaded", () => {
  const toggle = document.getElementById("toggle-details");
  const details = document.getElementById("details");
  if (!toggle || !details) return;
  toggle.addEventListener("click", () => {
    const hidden = details.classList.toggle("hidden");
    toggle.textContent = hidden ? "Show items" : "Hide items";
  });
});
`

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Flow Metrics Report</title>
<script src="https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.min.js"></script>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 2rem auto; max-width: 960px; padding: 0 1rem; color: #1f2430; }
h1 { border-bottom: 2px solid #6c5ce7; padding-bottom: .3rem; }
table { border-collapse: collapse; margin: 1rem 0; }
th, td { border: 1px solid #d0d4dc; padding: .35rem .7rem; text-align: left; }
th { background: #f0f2f7; }
.meta { color: #5a6072; }
.warning { color: #b7791f; font-weight: 600; }
.chart { margin: 1.5rem 0; }
.hidden { display: none; }
button { border: 1px solid #d0d4dc; border-radius: 4px; background: #f0f2f7; padding: .2rem .6rem; cursor: pointer; font-size: .8rem; }
</style>
</head>
<body>
<h1>Flow Metrics Report</h1>
<p class="meta">Generated {{.GeneratedAt}}{{with .Window}}, window {{.}}{{end}}</p>
<p class="meta">{{.Counts}}</p>

{{if .Stats}}
<h2>Durations (days)</h2>
<table>
<tr><th>view</th><th>count</th><th>mean</th><th>p50</th><th>p75</th><th>p85</th><th>p95</th></tr>
{{range .Stats}}
<tr><td>{{.View}}</td><td>{{.Count}}</td><td>{{.Mean}}</td><td>{{.P50}}</td><td>{{.P75}}</td><td>{{.P85}}</td><td>{{.P95}}</td></tr>
{{end}}
</table>
{{end}}

{{with .Correlation}}
<p>Estimate correlation: Pearson r = {{printf "%.2f" .Coefficient}} against {{.Kind}} time over {{.Pairs}} pairs.</p>
{{end}}

{{range .Charts}}
<div class="chart">
<h2>{{.Title}}</h2>
<pre class="mermaid">{{.Body}}</pre>
</div>
{{end}}

{{if .Details}}
<h2>Items <button id="toggle-details">Hide items</button></h2>
<div id="details">
<table>
<tr><th>key</th><th>type</th><th>status</th><th>created</th><th>completed</th><th>lead</th><th>cycle</th></tr>
{{range .Details}}
<tr><td>{{.Key}}</td><td>{{.Type}}</td><td>{{.Status}}</td><td>{{.Created}}</td><td>{{.Completed}}</td><td>{{.Lead}}</td><td>{{.Cycle}}</td></tr>
{{end}}
</table>
</div>
{{end}}

{{range .Warnings}}
<p class="warning">{{.}}</p>
{{end}}

<script>{{.Script}}</script>
</body>
</html>
`))

type statRow struct {
	View  string
	Count int
	Mean  string
	P50   int
	P75   int
	P85   int
	P95   int
}

type detailRow struct {
	Key       string
	Type      string
	Status    string
	Created   string
	Completed string
	Lead      string
	Cycle     string
}

type htmlData struct {
	GeneratedAt string
	Window      string
	Counts      string
	Stats       []statRow
	Correlation *metrics.CorrelationResult
	Charts      []Chart
	Details     []detailRow
	Warnings    []string
	Script      template.JS
}

// WriteHTML renders the report with its charts into a standalone HTML file.
// Chart bodies may arrive fenced for markdown; fences are stripped here.
func WriteHTML(path string, report *metrics.FlowReport, charts []Chart) error {
	data := htmlData{
		GeneratedAt: report.GeneratedAt.Format("2006-01-02 15:04 MST"),
		Counts: fmt.Sprintf("%d items, %d completed, %d open, %d skipped",
			report.ItemCount, report.CompletedCount, report.OpenCount, report.SkippedCount),
		Correlation: report.Correlation,
		Warnings:    report.Warnings,
		Script:      minifyScript(reportScript),
	}
	if report.Since != nil || report.Until != nil {
		data.Window = fmt.Sprintf("%s .. %s", fmtDate(report.Since), fmtDate(report.Until))
	}
	if report.LeadTime != nil {
		data.Stats = append(data.Stats, newStatRow("lead", report.LeadTime))
	}
	if report.CycleTime != nil {
		data.Stats = append(data.Stats, newStatRow("cycle", report.CycleTime))
	}
	for _, chart := range charts {
		if chart.Body == "" {
			continue
		}
		data.Charts = append(data.Charts, Chart{Title: chart.Title, Body: stripFences(chart.Body)})
	}
	for _, row := range report.Details {
		data.Details = append(data.Details, detailRow{
			Key:       row.Key,
			Type:      row.Type,
			Status:    row.Status,
			Created:   row.Created.Format("2006-01-02"),
			Completed: fmtDate(row.CompletedAt),
			Lead:      fmtDays(row.LeadDays),
			Cycle:     fmtDays(row.CycleDays),
		})
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}
	log.Info().Str("path", path).Int("charts", len(data.Charts)).Msg("HTML report saved")
	return nil
}

// OpenInBrowser opens the report in the system browser. Failure is
// reported, not fatal; the file is on disk either way.
func OpenInBrowser(path string) {
	if err := browser.OpenFile(path); err != nil {
		log.Warn().Str("path", path).Err(err).Msg("Could not open browser")
	}
}

func minifyScript(source string) template.JS {
	result := api.Transform(source, api.TransformOptions{
		Loader:            api.LoaderJS,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
	})
	if len(result.Errors) > 0 {
		log.Warn().Int("errors", len(result.Errors)).Msg("Falling back to unminified report script")
		return template.JS(source)
	}
	return template.JS(result.Code)
}

func newStatRow(view string, stats *metrics.DurationStats) statRow {
	return statRow{
		View:  view,
		Count: stats.Count,
		Mean:  fmt.Sprintf("%.1f", stats.Mean),
		P50:   stats.P50,
		P75:   stats.P75,
		P85:   stats.P85,
		P95:   stats.P95,
	}
}

func stripFences(chart string) string {
	chart = strings.TrimPrefix(chart, "```mermaid\n")
	chart = strings.TrimSuffix(chart, "```")
	return strings.TrimSpace(chart)
}
