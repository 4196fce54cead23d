// Package reporter renders a validation run as JSON and HTML files.
package reporter

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"api-contract-validator/internal/types"

	"go.uber.org/zap"
)

// Config holds the reporting output settings.
type Config struct {
	Format           []string
	OutputDir        string
	Detailed         bool
	LatencyThreshold float64
}

// Report is the rendered view of one run.
type Report struct {
	Timestamp time.Time               `json:"timestamp"`
	Total     int                     `json:"total"`
	Passed    int                     `json:"passed"`
	Failed    int                     `json:"failed"`
	AllPassed bool                    `json:"all_passed"`
	Entries   []types.ValidationEntry `json:"entries"`
}

// Reporter writes reports in the configured formats.
type Reporter struct {
	cfg Config
	log *zap.Logger
}

// New returns a reporter.
func New(cfg Config, log *zap.Logger) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.LatencyThreshold == 0 {
		cfg.LatencyThreshold = 2.0
	}
	return &Reporter{cfg: cfg, log: log}
}

// Build aggregates entries into a report using the entry-level verdict.
func (r *Reporter) Build(entries []types.ValidationEntry) Report {
	report := Report{
		Timestamp: time.Now(),
		Total:     len(entries),
		Entries:   entries,
	}
	for _, e := range entries {
		if e.Passed(r.cfg.LatencyThreshold) {
			report.Passed++
		} else {
			report.Failed++
		}
	}
	report.AllPassed = report.Failed == 0
	return report
}

// Generate writes the report files and returns their paths.
func (r *Reporter) Generate(entries []types.ValidationEntry) ([]string, error) {
	if err := os.MkdirAll(r.cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	report := r.Build(entries)
	stamp := report.Timestamp.Format("20060102_150405")

	var paths []string
	for _, format := range r.cfg.Format {
		switch format {
		case "json":
			path := filepath.Join(r.cfg.OutputDir, fmt.Sprintf("report_%s.json", stamp))
			if err := r.writeJSON(report, path); err != nil {
				return paths, fmt.Errorf("failed to generate JSON report: %w", err)
			}
			paths = append(paths, path)
		case "html":
			path := filepath.Join(r.cfg.OutputDir, fmt.Sprintf("report_%s.html", stamp))
			if err := r.writeHTML(report, path); err != nil {
				return paths, fmt.Errorf("failed to generate HTML report: %w", err)
			}
			paths = append(paths, path)
		default:
			r.log.Warn("unknown report format", zap.String("format", format))
		}
	}

	for _, p := range paths {
		r.log.Info("report written", zap.String("path", p))
	}
	return paths, nil
}

func (r *Reporter) writeJSON(report Report, path string) error {
	if !r.cfg.Detailed {
		// Trim the heavy per-entry bodies, keep the verdict data.
		slim := make([]types.ValidationEntry, len(report.Entries))
		copy(slim, report.Entries)
		for i := range slim {
			slim[i].Response = nil
			slim[i].Schema = nil
		}
		report.Entries = slim
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// entryView is the per-card template model.
type entryView struct {
	Index    int
	Entry    types.ValidationEntry
	Passed   bool
	StatusOK bool
	Payload  string
	Schema   string
	Response string
	Issues   []types.Issue
}

func (r *Reporter) writeHTML(report Report, path string) error {
	views := make([]entryView, len(report.Entries))
	for i, e := range report.Entries {
		views[i] = entryView{
			Index:    i,
			Entry:    e,
			Passed:   e.Passed(r.cfg.LatencyThreshold),
			StatusOK: e.StatusCode >= 200 && e.StatusCode < 300,
			Payload:  pretty(e.Payload),
			Schema:   pretty(e.Schema),
			Response: pretty(e.Response),
			Issues:   e.Issues,
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return htmlTemplate.Execute(f, map[string]interface{}{
		"Report":      report,
		"Entries":     views,
		"GeneratedAt": report.Timestamp.Format("2006-01-02 15:04:05"),
	})
}

func pretty(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>API Validation Report</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
.card { border: 1px solid #ccc; border-radius: 8px; margin-bottom: 20px; padding: 15px; }
.pass { color: green; font-weight: bold; }
.fail { color: red; font-weight: bold; }
.gray { color: gray; }
button { margin-top: 5px; margin-bottom: 10px; }
.code-block { display: none; background-color: #f9f9f9; border: 1px dashed #999; padding: 10px; white-space: pre-wrap; margin-top: 5px; }
</style>
<script>
function toggle(id, btn, label) {
    const el = document.getElementById(id);
    if (el.style.display === "block") {
        el.style.display = "none";
        btn.innerText = "Expand " + label;
    } else {
        el.style.display = "block";
        btn.innerText = "Close " + label;
    }
}
</script>
</head><body>
<h2>API Validation Report</h2>
<p>Generated at: {{.GeneratedAt}}</p>
<h3 class="{{if .Report.AllPassed}}pass{{else}}fail{{end}}">Final Result: {{if .Report.AllPassed}}Validated{{else}}Failed{{end}}</h3>
<p>{{.Report.Passed}} of {{.Report.Total}} requests passed</p>
{{range .Entries}}
<div class="card">
<h3>{{.Entry.Method}} {{.Entry.URL}}</h3>
<p>
<strong>Status:</strong> <span class="{{if .StatusOK}}pass{{else}}fail{{end}}">{{.Entry.StatusCode}}</span> |
<strong>Schema:</strong> {{if eq .Entry.SchemaValid.String "valid"}}<span class="pass">Passed{{if .Entry.SchemaCreated}} (baseline created){{end}}</span>{{else if eq .Entry.SchemaValid.String "invalid"}}<span class="fail">Failed</span>{{else}}<span class="gray">Skipped</span>{{end}} |
<strong>Time:</strong> {{printf "%.2f" .Entry.ResponseTime}}s |
<strong>Result:</strong> <span class="{{if .Passed}}pass{{else}}fail{{end}}">{{if .Passed}}Pass{{else}}Fail{{end}}</span>
</p>
<p><strong>Issues:</strong>{{if .Issues}}<br>{{range .Issues}}[{{.Kind}}] {{.Message}}<br>{{end}}{{else}} None{{end}}</p>
{{if .Payload}}<button onclick="toggle('payload_{{.Index}}', this, 'Payload')">Expand Payload</button><div id="payload_{{.Index}}" class="code-block">{{.Payload}}</div>{{end}}
{{if .Schema}}<button onclick="toggle('schema_{{.Index}}', this, 'Schema')">Expand Schema</button><div id="schema_{{.Index}}" class="code-block">{{.Schema}}</div>{{end}}
{{if .Response}}<button onclick="toggle('resp_{{.Index}}', this, 'Response')">Expand Response</button><div id="resp_{{.Index}}" class="code-block">{{.Response}}</div>{{end}}
</div>
{{end}}
</body></html>
`))
