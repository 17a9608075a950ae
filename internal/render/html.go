package render

import (
	"fmt"
	"html/template"
	"io"
)

// printStylesheet is inlined so the HTML prints the same when saved standalone.
const printStylesheet = `
body { font-family: "Times New Roman", serif; font-size: 12pt; margin: 2cm; color: #000; }
header { text-align: center; border-bottom: 2px solid #000; padding-bottom: 8px; margin-bottom: 16px; }
header h1 { font-size: 18pt; margin: 0 0 4px; }
header .meta { display: flex; justify-content: space-between; font-size: 11pt; }
section { margin-bottom: 18px; }
section h2 { font-size: 14pt; text-align: center; margin: 12px 0 4px; }
.instructions { font-style: italic; margin: 4px 0 8px; }
.passage { border: 1px solid #444; padding: 8px; margin: 6px 0; white-space: pre-wrap; }
.question { display: flex; margin: 6px 0; page-break-inside: avoid; }
.question .num { min-width: 2.5em; font-weight: bold; }
.question .body { flex: 1; }
.question .marks { min-width: 3em; text-align: right; }
ol.options { list-style: none; padding-left: 0; margin: 4px 0; display: grid; grid-template-columns: 1fr 1fr; }
.sub { margin: 4px 0 4px 1.5em; display: flex; }
.sub .num { min-width: 2.5em; }
.or { text-align: center; font-weight: bold; margin: 4px 0; }
.lines { border-bottom: 1px dotted #888; height: 1.4em; }
@media print { body { margin: 1.5cm; } }
`

var htmlTemplate = template.Must(template.New("paper").Funcs(template.FuncMap{
	"lines": func(n int) []struct{} { return make([]struct{}, n) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Doc.Title}}</title>
<style>{{.Style}}</style>
</head>
<body>
<header>
<h1>{{.Doc.Title}}</h1>
<div class="meta">
<span>{{with .Doc.Subject}}Subject: {{.}}{{end}}{{with .Doc.ClassName}} &middot; Class: {{.}}{{end}}</span>
<span>{{with .Doc.DurationMinutes}}Time: {{.}} min &middot; {{end}}Max. Marks: {{.Doc.TotalMarks}}</span>
</div>
</header>
{{range .Doc.Sections}}<section>
<h2>{{.Title}}</h2>
{{with .Instructions}}<p class="instructions">{{.}}</p>{{end}}
{{range .Groups}}<div class="group">
{{with .Instructions}}<p class="instructions">{{.}}</p>{{end}}
{{with .Passage}}<div class="passage">{{.}}</div>{{end}}
{{range .Items}}{{with .Passage}}<div class="passage">{{.}}</div>{{end}}
<div class="question">
<span class="num">{{.Label}}.</span>
<div class="body">
{{with .Text}}<div class="text">{{.}}</div>{{end}}
{{with .Options}}<ol class="options">{{range .}}<li>{{.Label}}. {{.Text}}</li>{{end}}</ol>{{end}}
{{range .Subs}}{{if .OR}}<div class="or">OR</div>{{end}}<div class="sub"><span class="num">{{.Label}}</span><span class="body">{{.Text}}</span><span class="marks">[{{.Marks}}]</span></div>
{{end}}{{if not .Subs}}{{range lines .AnswerLines}}<div class="lines"></div>{{end}}{{end}}
</div>
<span class="marks">{{if .Marks}}[{{.Marks}}]{{end}}</span>
</div>
{{end}}</div>
{{end}}</section>
{{end}}</body>
</html>
`))

// HTML writes doc as a standalone printable page.
func HTML(w io.Writer, doc Document) error {
	data := struct {
		Doc   Document
		Style template.CSS
	}{Doc: doc, Style: template.CSS(printStylesheet)}
	if err := htmlTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}
