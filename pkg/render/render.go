// Package render produces printable report card documents. The default
// implementation writes a plain HTML document; callers treat the output as
// an opaque byte stream so the renderer can be swapped for a PDF engine
// without touching the pipeline.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/rs/zerolog"
)

// SubjectLine is one row of the rendered score table.
type SubjectLine struct {
	Subject string
	Score   float64
	Points  int
	Absent  bool
}

// ReportData carries everything the renderer needs for one document.
type ReportData struct {
	StudentName     string
	AdmissionNumber string
	GradeName       string
	AcademicYear    string
	Term            int
	Subjects        []SubjectLine
	Total           float64
	TotalPoints     int
	Certificate     string
	GeneralComment  string
	GeneratedAt     time.Time
}

// Renderer turns report data into a document byte stream.
type Renderer interface {
	Render(ctx context.Context, data ReportData) ([]byte, error)
}

const reportTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Report Card - {{.StudentName}}</title></head>
<body>
<h1>Report Card</h1>
<p>{{.StudentName}} ({{.AdmissionNumber}}) &mdash; {{.GradeName}}</p>
<p>Academic Year {{.AcademicYear}}, Term {{.Term}}</p>
<table border="1" cellpadding="4">
<tr><th>Subject</th><th>Score</th><th>Points</th></tr>
{{range .Subjects}}<tr><td>{{.Subject}}</td><td>{{if .Absent}}ABS{{else}}{{printf "%.0f" .Score}}{{end}}</td><td>{{if .Points}}{{.Points}}{{end}}</td></tr>
{{end}}</table>
<p>Total: {{printf "%.0f" .Total}}{{if .TotalPoints}} &mdash; Points: {{.TotalPoints}}{{end}}</p>
<p>Certificate: {{.Certificate}}</p>
{{if .GeneralComment}}<p>Comment: {{.GeneralComment}}</p>{{end}}
<p><small>Generated {{.GeneratedAt.Format "2006-01-02 15:04"}}</small></p>
</body>
</html>
`

// HTMLRenderer renders report cards from a fixed HTML template.
type HTMLRenderer struct {
	tmpl   *template.Template
	logger zerolog.Logger
}

// NewHTMLRenderer constructs the default renderer.
func NewHTMLRenderer(logger zerolog.Logger) (*HTMLRenderer, error) {
	tmpl, err := template.New("report_card").Parse(reportTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}

	return &HTMLRenderer{
		tmpl:   tmpl,
		logger: logger.With().Str("component", "html_renderer").Logger(),
	}, nil
}

// Render executes the template for one report card.
func (r *HTMLRenderer) Render(ctx context.Context, data ReportData) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render report card for %q: %w", data.StudentName, err)
	}

	r.logger.Debug().Str("student", data.StudentName).Int("bytes", buf.Len()).Msg("report card rendered")
	return buf.Bytes(), nil
}
