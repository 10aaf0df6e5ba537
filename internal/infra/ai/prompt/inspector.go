package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/bryanwahyu/archscope/internal/domain/inspection"
	"github.com/bryanwahyu/archscope/internal/domain/stages"
)

const inspectorTemplate = `You are an expert building inspector analyzing a construction site or building image.

Construction Stage: {{.Stage}}

This stage typically focuses on: {{.Focus}}
Common issues to watch for: {{.Issues}}

Provide a detailed analysis with:
1. Overall Assessment: A summary of the construction quality and progress
2. Detected Deficiencies: List any structural issues, code violations, or quality concerns found
3. Severity Rating: Rate each issue as Low, Medium, High, or Critical
4. Remediation Recommendations: Specific, actionable steps to address each deficiency
5. Compliance Status: Note if there are any code violations or safety concerns

Analysis depth level: {{.Depth}} out of 5
Safety prioritization: {{.Safety}}

Format your response in clear, professional sections suitable for building inspection reports.
Be specific about measurements, locations, and technical details when possible.
`

var inspector = template.Must(template.New("inspector").Parse(inspectorTemplate))

// SafetyLabel is the prompt wording for the safety toggle.
func SafetyLabel(prioritized bool) string {
	if prioritized {
		return "High"
	}
	return "Standard"
}

// Build renders the inspection prompt for one stage. IncludeRecommendations
// is deliberately not consulted.
func Build(profile stages.StageProfile, opts inspection.Options) (string, error) {
	var b strings.Builder
	err := inspector.Execute(&b, struct {
		Stage  string
		Focus  string
		Issues string
		Depth  int
		Safety string
	}{
		Stage:  profile.Name,
		Focus:  profile.FocusAreas,
		Issues: strings.Join(profile.CommonIssues, ", "),
		Depth:  opts.Depth,
		Safety: SafetyLabel(opts.SafetyPrioritized),
	})
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}
