package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/bryanwahyu/safeweb/internal/config"
	"github.com/bryanwahyu/safeweb/internal/domain/analysis"
	"github.com/bryanwahyu/safeweb/internal/infra/ai/fake"
	"github.com/bryanwahyu/safeweb/internal/infra/ai/gemini"
	"github.com/bryanwahyu/safeweb/internal/infra/ai/openai"
)

// New creates the analyzer selected by cfg.AI.Provider.
func New(ctx context.Context, cfg *config.Config) (analysis.Analyzer, error) {
	a := cfg.AI
	switch strings.ToLower(a.Provider) {
	case "gemini":
		c, err := gemini.NewClient(ctx, a.APIKey, a.BaseURL, a.Model, a.Temperature)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "openai":
		return openai.NewClient(a.APIKey, a.BaseURL, a.Model, a.Temperature), nil
	case "fake":
		return fake.NewAnalyzer(), nil
	default:
		return nil, fmt.Errorf("unknown ai provider: %s (supported: gemini, openai, fake)", a.Provider)
	}
}
