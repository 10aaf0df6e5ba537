package inspection

import "strings"

// headerRule moves the classifier into kind when a paragraph starts with
// one of prefixes (upper-case, compared case-insensitively).
type headerRule struct {
	kind     SectionKind
	prefixes []string
}

// Order matters: rules are tried top to bottom and the first hit wins.
var headerRules = []headerRule{
	{SectionAssessment, []string{"OVERALL ASSESSMENT"}},
	{SectionDeficiencies, []string{"DETECTED DEFICIENCIES", "DEFICIENCIES"}},
	{SectionRecommendations, []string{"REMEDIATION RECOMMENDATIONS", "RECOMMENDATIONS"}},
	{SectionCompliance, []string{"COMPLIANCE STATUS", "COMPLIANCE"}},
}

// Paragraphs splits text on blank lines, trims each piece and drops empties.
func Paragraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// HeaderKind returns the section a header paragraph opens, or false when
// the paragraph is body text.
func HeaderKind(paragraph string) (SectionKind, bool) {
	upper := strings.ToUpper(paragraph)
	for _, r := range headerRules {
		for _, p := range r.prefixes {
			if strings.HasPrefix(upper, p) {
				return r.kind, true
			}
		}
	}
	return "", false
}

// Sectionize classifies every paragraph of the reply by the header that
// precedes it. Header paragraphs are consumed. Text without any header
// comes back as a single unclassified section; repeated headers open a new
// block of the same kind.
func Sectionize(text string) AnalysisResult {
	res := AnalysisResult{RawText: text, Sections: []Section{}}

	current := SectionUnclassified
	open := -1 // index of the block body paragraphs go to, -1 = none yet

	for _, p := range Paragraphs(text) {
		if kind, ok := HeaderKind(p); ok {
			current = kind
			res.Sections = append(res.Sections, Section{Kind: kind, Paragraphs: []string{}})
			open = len(res.Sections) - 1
			continue
		}
		if open < 0 {
			res.Sections = append(res.Sections, Section{Kind: current, Paragraphs: []string{}})
			open = len(res.Sections) - 1
		}
		res.Sections[open].Paragraphs = append(res.Sections[open].Paragraphs, p)
	}
	return res
}
