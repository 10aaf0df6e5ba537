package stages

// StageProfile describes one construction phase and what an inspector
// should look at during it. Profiles are static and never mutated.
type StageProfile struct {
	Name         string   `json:"name"`
	FocusAreas   string   `json:"focus_areas"`
	CommonIssues []string `json:"common_issues"`
}
