package inspection

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bryanwahyu/archscope/internal/application"
	"github.com/bryanwahyu/archscope/internal/application/session"
	"github.com/bryanwahyu/archscope/internal/domain/ai"
	domain "github.com/bryanwahyu/archscope/internal/domain/inspection"
	"github.com/bryanwahyu/archscope/internal/domain/stages"
	"github.com/bryanwahyu/archscope/internal/infra/ai/prompt"
)

// Service runs one synchronous analysis per call. No retry is attempted.
type Service struct {
	AI    ai.Client
	Clock application.Clock
	// Timeout bounds the provider call; zero means no deadline.
	Timeout time.Duration
	Logger  *slog.Logger

	validate *validator.Validate
}

func NewService(client ai.Client, clock application.Clock, timeout time.Duration, logger *slog.Logger) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{AI: client, Clock: clock, Timeout: timeout, Logger: logger, validate: newValidator()}
}

// Command untuk satu kali analisis
type AnalyzeCommand struct {
	Stage     string `validate:"required,stage"`
	Options   domain.Options
	ImageName string `validate:"required,upload"`
	Image     io.ReadSeeker
}

// AnalysisOutcome is what the caller renders after a successful analysis.
type AnalysisOutcome struct {
	Entry        domain.HistoryEntry   `json:"entry"`
	Number       int                   `json:"number"`
	Options      domain.Options        `json:"options"`
	MIMEType     string                `json:"mime_type"`
	Image        domain.ImageInfo      `json:"image"`
	Result       domain.AnalysisResult `json:"result"`
	DownloadName string                `json:"download_name"`
}

// NewRequest pairs the rendered prompt with the image payload.
func NewRequest(profile stages.StageProfile, opts domain.Options, imageName string, data []byte) (domain.AnalysisRequest, error) {
	text, err := prompt.Build(profile, opts)
	if err != nil {
		return domain.AnalysisRequest{}, err
	}
	return domain.AnalysisRequest{
		Stage:                  profile,
		Depth:                  opts.Depth,
		SafetyPrioritized:      opts.SafetyPrioritized,
		IncludeRecommendations: opts.IncludeRecommendations,
		ImageName:              imageName,
		ImageBytes:             data,
		MIMEType:               domain.MIMEType(imageName),
		Prompt:                 text,
	}, nil
}

// Analyze validates the command, calls the model once, sectionizes the
// reply and appends it to st. Nothing is recorded on failure.
func (s *Service) Analyze(ctx context.Context, st *session.State, cmd AnalyzeCommand) (*AnalysisOutcome, error) {
	if s.validate == nil {
		s.validate = newValidator()
	}
	if err := s.validate.Struct(cmd); err != nil {
		return nil, validationError(err)
	}
	if cmd.Image == nil {
		return nil, fmt.Errorf("%w: image is required", domain.ErrValidation)
	}
	profile, err := stages.Lookup(cmd.Stage)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	info, data, err := domain.ReadImage(cmd.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	req, err := NewRequest(profile, cmd.Options, cmd.ImageName, data)
	if err != nil {
		return nil, err
	}

	callCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	start := s.Clock.Now()
	text, err := s.AI.Analyze(callCtx, req.Prompt, ai.Image{MIMEType: req.MIMEType, Data: req.ImageBytes})
	if err != nil {
		s.Logger.Warn("analysis failed",
			"session", st.ID, "stage", profile.Name, "image", cmd.ImageName,
			"kind", ai.KindOf(err), "error", err)
		return nil, err
	}

	result := domain.Sectionize(text)
	entry := domain.HistoryEntry{
		ID:           uuid.NewString(),
		Stage:        profile.Name,
		ImageName:    cmd.ImageName,
		AnalysisText: text,
		CreatedAt:    s.Clock.Now(),
	}
	number := st.Append(entry)

	s.Logger.Info("analysis complete",
		"session", st.ID, "entry", entry.ID, "stage", profile.Name,
		"mime", req.MIMEType, "bytes", len(data), "sections", len(result.Sections),
		"duration", entry.CreatedAt.Sub(start))

	return &AnalysisOutcome{
		Entry:        entry,
		Number:       number,
		Options:      cmd.Options,
		MIMEType:     req.MIMEType,
		Image:        info,
		Result:       result,
		DownloadName: domain.DownloadName(profile.Name),
	}, nil
}
