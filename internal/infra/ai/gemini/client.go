package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bryanwahyu/archscope/internal/domain/ai"
)

const defaultModel = "gemini-2.0-flash"

// generator is the part of *genai.Models the client needs.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Client struct {
	models generator
	Model  string
}

// NewClient connects to the Gemini API with the given key.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w: %v", ai.ErrCredential, err)
	}
	return &Client{models: cli.Models, Model: model}, nil
}

func (c *Client) Analyze(ctx context.Context, prompt string, img ai.Image) (string, error) {
	model := c.Model
	if model == "" {
		model = defaultModel
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(img.Data, img.MIMEType),
		}, genai.RoleUser),
	}

	resp, err := c.models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", classify(err)
	}
	if resp == nil {
		return "", fmt.Errorf("gemini: %w: nil response", ai.ErrMalformedResponse)
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", fmt.Errorf("gemini: %w: prompt blocked (%s)", ai.ErrServiceRejected, fb.BlockReason)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("gemini: %w: blocked by safety filter", ai.ErrServiceRejected)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini: %w: empty text", ai.ErrMalformedResponse)
	}
	return text, nil
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gemini: %w: %s", classifyAPI(apiErr), apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return fmt.Errorf("gemini: %w: %s", classifyAPI(*apiErrPtr), apiErrPtr.Message)
	}
	return fmt.Errorf("gemini: %w: %v", ai.ErrTransport, err)
}

func classifyAPI(e genai.APIError) error {
	switch e.Status {
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return ai.ErrCredential
	case "RESOURCE_EXHAUSTED":
		return ai.ErrQuotaExceeded
	}
	// Gemini answers a bad key with 400 INVALID_ARGUMENT "API key not valid"
	if e.Code == 400 && strings.Contains(strings.ToLower(e.Message), "api key") {
		return ai.ErrCredential
	}
	return ai.ClassifyStatus(e.Code)
}
