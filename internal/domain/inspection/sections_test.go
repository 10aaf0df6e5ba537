package inspection

import (
	"strings"
	"testing"
)

func TestHeaderKind_AllVariantsAnyCase(t *testing.T) {
	cases := []struct {
		header string
		want   SectionKind
	}{
		{"OVERALL ASSESSMENT", SectionAssessment},
		{"Overall Assessment:", SectionAssessment},
		{"overall assessment - good progress", SectionAssessment},
		{"DETECTED DEFICIENCIES", SectionDeficiencies},
		{"Detected deficiencies", SectionDeficiencies},
		{"deficiencies", SectionDeficiencies},
		{"REMEDIATION RECOMMENDATIONS", SectionRecommendations},
		{"Remediation Recommendations:", SectionRecommendations},
		{"recommendations", SectionRecommendations},
		{"COMPLIANCE STATUS", SectionCompliance},
		{"Compliance status", SectionCompliance},
		{"cOmPlIaNcE", SectionCompliance},
	}
	for _, c := range cases {
		got, ok := HeaderKind(c.header)
		if !ok || got != c.want {
			t.Fatalf("%q: expected %s, got %s (ok=%v)", c.header, c.want, got, ok)
		}
	}

	for _, body := range []string{"**Overall Assessment**", "1. Overall Assessment", "The compliance status is fine"} {
		if kind, ok := HeaderKind(body); ok {
			t.Fatalf("%q: expected body paragraph, got header %s", body, kind)
		}
	}
}

func TestSectionize_CanonicalReport(t *testing.T) {
	text := strings.Join([]string{
		"Intro line from the model.",
		"OVERALL ASSESSMENT",
		"Work is progressing.",
		"Quality is acceptable.",
		"Detected Deficiencies",
		"Exposed wiring near panel.",
		"Remediation Recommendations",
		"Install cover plates.",
		"Compliance Status",
		"Two code violations.",
	}, "\n\n")

	res := Sectionize(text)
	want := []Section{
		{SectionUnclassified, []string{"Intro line from the model."}},
		{SectionAssessment, []string{"Work is progressing.", "Quality is acceptable."}},
		{SectionDeficiencies, []string{"Exposed wiring near panel."}},
		{SectionRecommendations, []string{"Install cover plates."}},
		{SectionCompliance, []string{"Two code violations."}},
	}
	assertSections(t, res.Sections, want)
	if res.RawText != text {
		t.Fatalf("raw text was modified")
	}
}

func TestSectionize_NoHeaders(t *testing.T) {
	text := "First paragraph.\n\n  Second paragraph.  \n\n\n\nThird paragraph."
	res := Sectionize(text)
	assertSections(t, res.Sections, []Section{
		{SectionUnclassified, []string{"First paragraph.", "Second paragraph.", "Third paragraph."}},
	})
}

func TestSectionize_NonCanonicalOrder(t *testing.T) {
	text := "COMPLIANCE\n\nPermit missing.\n\ndeficiencies\n\nCracked footing.\n\nOverall assessment\n\nPoor."
	res := Sectionize(text)
	assertSections(t, res.Sections, []Section{
		{SectionCompliance, []string{"Permit missing."}},
		{SectionDeficiencies, []string{"Cracked footing."}},
		{SectionAssessment, []string{"Poor."}},
	})
}

func TestSectionize_RepeatedHeaderNotDeduplicated(t *testing.T) {
	text := "Compliance\n\nA.\n\nRecommendations\n\nB.\n\nCompliance Status\n\nC."
	res := Sectionize(text)
	assertSections(t, res.Sections, []Section{
		{SectionCompliance, []string{"A."}},
		{SectionRecommendations, []string{"B."}},
		{SectionCompliance, []string{"C."}},
	})

	by := res.ByKind()
	if got := strings.Join(by[SectionCompliance], ","); got != "A.,C." {
		t.Fatalf("expected compliance paragraphs A.,C., got %s", got)
	}
}

func TestSectionize_HeaderOnlyAndEmpty(t *testing.T) {
	res := Sectionize("OVERALL ASSESSMENT")
	assertSections(t, res.Sections, []Section{{SectionAssessment, []string{}}})

	res = Sectionize("   \n\n  ")
	if len(res.Sections) != 0 {
		t.Fatalf("expected no sections for blank text, got %d", len(res.Sections))
	}
}

func TestSectionize_EveryParagraphAssignedOnce(t *testing.T) {
	text := "a\n\nOverall Assessment\n\nb\n\nc\n\nDeficiencies\n\nd\n\nCompliance\n\ne"
	res := Sectionize(text)

	total := 0
	for _, s := range res.Sections {
		total += len(s.Paragraphs)
	}
	// 9 paragraphs, 3 of them headers
	if total != 6 {
		t.Fatalf("expected 6 body paragraphs, got %d", total)
	}
}

func assertSections(t *testing.T, got, want []Section) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d sections, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].Kind != want[i].Kind {
			t.Fatalf("section %d: expected kind %s, got %s", i, want[i].Kind, got[i].Kind)
		}
		if strings.Join(got[i].Paragraphs, "|") != strings.Join(want[i].Paragraphs, "|") {
			t.Fatalf("section %d: expected %q, got %q", i, want[i].Paragraphs, got[i].Paragraphs)
		}
	}
}
