package inspection

import (
	"errors"
	"strings"
	"time"

	"github.com/bryanwahyu/archscope/internal/domain/stages"
)

// ErrValidation wraps every input problem (unknown stage, bad depth, bad upload).
var ErrValidation = errors.New("invalid analysis input")

const (
	MinDepth     = 1
	MaxDepth     = 5
	DefaultDepth = 3
)

// Options are the user-chosen analysis parameters.
type Options struct {
	Depth                  int  `json:"depth" validate:"min=1,max=5"`
	IncludeRecommendations bool `json:"include_recommendations"`
	SafetyPrioritized      bool `json:"safety_prioritized"`
}

// DefaultOptions mirrors the initial state of the analysis form.
func DefaultOptions() Options {
	return Options{
		Depth:                  DefaultDepth,
		IncludeRecommendations: true,
		SafetyPrioritized:      true,
	}
}

// AnalysisRequest is built fresh for each analysis and dropped after the call.
type AnalysisRequest struct {
	Stage                  stages.StageProfile
	Depth                  int
	SafetyPrioritized      bool
	IncludeRecommendations bool // recorded only, never sent to the model
	ImageName              string
	ImageBytes             []byte
	MIMEType               string
	Prompt                 string
}

// SectionKind labels a block of the report.
type SectionKind string

const (
	SectionUnclassified    SectionKind = "unclassified"
	SectionAssessment      SectionKind = "assessment"
	SectionDeficiencies    SectionKind = "deficiencies"
	SectionRecommendations SectionKind = "recommendations"
	SectionCompliance      SectionKind = "compliance"
)

// Section is one run of body paragraphs under a single header.
type Section struct {
	Kind       SectionKind `json:"kind"`
	Paragraphs []string    `json:"paragraphs"`
}

// AnalysisResult is a parsed reply. RawText is never modified.
type AnalysisResult struct {
	RawText  string    `json:"raw_text"`
	Sections []Section `json:"sections"`
}

// ByKind groups every body paragraph by section kind, keeping reply order.
func (r AnalysisResult) ByKind() map[SectionKind][]string {
	out := make(map[SectionKind][]string)
	for _, s := range r.Sections {
		out[s.Kind] = append(out[s.Kind], s.Paragraphs...)
	}
	return out
}

// HistoryEntry is one past analysis kept for the lifetime of a session.
type HistoryEntry struct {
	ID           string    `json:"id"`
	Stage        string    `json:"stage"`
	ImageName    string    `json:"image_name"`
	AnalysisText string    `json:"analysis_text"`
	CreatedAt    time.Time `json:"created_at"`
}

// DownloadName is the file name of the downloadable plain-text report.
func DownloadName(stage string) string {
	return "archscope_analysis_" + strings.ReplaceAll(stage, " ", "_") + ".txt"
}
