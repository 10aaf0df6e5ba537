package report

import (
	"strings"

	"github.com/bryanwahyu/archscope/internal/domain/inspection"
)

// Heading returns the display title of a section kind. Unclassified
// content has no heading.
func Heading(kind inspection.SectionKind) string {
	switch kind {
	case inspection.SectionAssessment:
		return "✅ Overall Assessment"
	case inspection.SectionDeficiencies:
		return "⚠️ Detected Deficiencies"
	case inspection.SectionRecommendations:
		return "🔧 Remediation Recommendations"
	case inspection.SectionCompliance:
		return "📋 Compliance Status"
	}
	return ""
}

// Tag decorates a body paragraph according to its section.
func Tag(kind inspection.SectionKind, paragraph string) string {
	switch kind {
	case inspection.SectionDeficiencies:
		return "⚠️ **" + paragraph + "**"
	case inspection.SectionRecommendations:
		return "💡 " + paragraph
	}
	return paragraph
}

// Markdown renders the parsed report as Markdown blocks.
func Markdown(res inspection.AnalysisResult) string {
	blocks := make([]string, 0, len(res.Sections)*2)
	for _, s := range res.Sections {
		if h := Heading(s.Kind); h != "" {
			blocks = append(blocks, "### "+h)
		}
		for _, p := range s.Paragraphs {
			blocks = append(blocks, Tag(s.Kind, p))
		}
	}
	if len(blocks) == 0 {
		return ""
	}
	return strings.Join(blocks, "\n\n") + "\n"
}

// Preview is the short history excerpt: first 200 characters plus an
// ellipsis. Multi-byte runes are never split.
func Preview(text string) string {
	const n = 200
	count := 0
	for i := range text {
		if count == n {
			return text[:i] + "..."
		}
		count++
	}
	return text + "..."
}
