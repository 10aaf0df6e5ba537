// Package provider picks the vision client named in config.
package provider

import (
	"context"
	"fmt"

	"github.com/bryanwahyu/archscope/internal/config"
	"github.com/bryanwahyu/archscope/internal/domain/ai"
	"github.com/bryanwahyu/archscope/internal/infra/ai/gemini"
	"github.com/bryanwahyu/archscope/internal/infra/ai/openai"
)

func New(ctx context.Context, cfg *config.Config) (ai.Client, error) {
	switch cfg.AI.Provider {
	case config.ProviderGemini:
		c, err := gemini.NewClient(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderOpenAI:
		return openai.NewClient(cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL), nil
	}
	return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
}
