package export

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"devlogger/internal/domain"
)

// htmlDocument is a self-contained page with inline styling, sized for
// A4 print by the downstream renderer.
var htmlDocument = template.Must(template.New("export").Funcs(template.FuncMap{
	"formatDate": func(t time.Time) string { return t.Format(dateLayout) },
	"breakLines": breakLines,
}).Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <style>
      body { font-family: Arial, sans-serif; margin: 40px; color: #333; }
      h1 { color: #2563eb; border-bottom: 2px solid #2563eb; padding-bottom: 10px; }
      h2 { color: #1e40af; margin-top: 30px; }
      .log { margin-bottom: 40px; page-break-inside: avoid; }
      .meta { color: #666; font-size: 14px; margin-bottom: 10px; }
      .tags { margin-top: 10px; }
      .tag { background: #e5e7eb; padding: 4px 8px; border-radius: 4px; font-size: 12px; margin-right: 5px; }
      pre { background: #f3f4f6; padding: 15px; border-radius: 5px; overflow-x: auto; }
      code { background: #f3f4f6; padding: 2px 4px; border-radius: 3px; }
    </style>
  </head>
  <body>
    <h1>{{.Title}}</h1>
    <p>Generated on {{formatDate .Now}} &middot; {{len .Logs}} entries</p>
    {{range .Logs}}
    <div class="log">
      <h2>{{.Title}}</h2>
      <div class="meta">
        Created: {{formatDate .CreatedAt}}{{if not (.UpdatedAt.Equal .CreatedAt)}} | Updated: {{formatDate .UpdatedAt}}{{end}}
      </div>
      <div>{{breakLines .Content}}</div>
      {{if .Tags}}
      <div class="tags">
        {{range .Tags}}<span class="tag">{{.}}</span>{{end}}
      </div>
      {{end}}
    </div>
    {{end}}
  </body>
</html>
`))

type htmlData struct {
	Title string
	Now   time.Time
	Logs  []domain.Log
}

// ToHTMLDocument renders the given logs into a full HTML page suitable
// for print-to-PDF conversion. Pure function of its input.
func ToHTMLDocument(title string, now time.Time, logs []domain.Log) (string, error) {
	var b strings.Builder
	err := htmlDocument.Execute(&b, htmlData{
		Title: title,
		Now:   now,
		Logs:  logs,
	})
	if err != nil {
		return "", fmt.Errorf("render export html: %w", err)
	}
	return b.String(), nil
}

// breakLines escapes the content and turns newlines into <br> so
// markdown text keeps its line structure in the rendered page.
func breakLines(content string) template.HTML {
	escaped := template.HTMLEscapeString(content)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}
