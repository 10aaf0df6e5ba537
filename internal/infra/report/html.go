package report

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/bryanwahyu/archscope/internal/domain/inspection"
)

var strict = bluemonday.StrictPolicy()

const fragmentTemplate = `{{range .}}<section class="report-{{.Kind}}">
{{- if .Heading}}<h3>{{.Heading}}</h3>{{end}}
{{- range .Paragraphs}}<p>{{.}}</p>{{end -}}
</section>
{{end}}`

var fragment = template.Must(template.New("report").Parse(fragmentTemplate))

type htmlSection struct {
	Kind       inspection.SectionKind
	Heading    string
	Paragraphs []string
}

// HTML renders the report as an HTML fragment. Markup in model text is
// stripped, the rest is escaped by html/template.
func HTML(res inspection.AnalysisResult) (string, error) {
	view := make([]htmlSection, 0, len(res.Sections))
	for _, s := range res.Sections {
		hs := htmlSection{Kind: s.Kind, Heading: Heading(s.Kind)}
		for _, p := range s.Paragraphs {
			hs.Paragraphs = append(hs.Paragraphs, htmlTag(s.Kind, plain(p)))
		}
		view = append(view, hs)
	}

	var b strings.Builder
	if err := fragment.Execute(&b, view); err != nil {
		return "", err
	}
	return b.String(), nil
}

// plain strips tags; bluemonday escapes what it keeps, the template will
// escape again, so undo the first pass.
func plain(p string) string {
	return html.UnescapeString(strict.Sanitize(p))
}

func htmlTag(kind inspection.SectionKind, p string) string {
	switch kind {
	case inspection.SectionDeficiencies:
		return "⚠️ " + p
	case inspection.SectionRecommendations:
		return "💡 " + p
	}
	return p
}
