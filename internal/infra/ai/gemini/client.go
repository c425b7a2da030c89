package gemini

import (
	"context"
	"fmt"
	"strings"

	genai "google.golang.org/genai"

	"github.com/bryanwahyu/safeweb/internal/domain/analysis"
)

const defaultModel = "gemini-2.5-flash"

// Client is a thin wrapper around the official genai client.
type Client struct {
	cli         *genai.Client
	model       string
	temperature float32
}

// NewClient builds a Gemini API client. baseURL is only set in tests.
func NewClient(ctx context.Context, apiKey, baseURL, model string, temperature float32) (*Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	cli, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{cli: cli, model: model, temperature: temperature}, nil
}

func (c *Client) Name() string { return "gemini:" + c.model }

// Generate implements analysis.Analyzer. The reply is requested as JSON
// constrained by ResponseSchema; an empty candidate list yields "".
func (c *Client) Generate(ctx context.Context, req analysis.Request) (string, error) {
	parts := []*genai.Part{{Text: req.Prompt}}
	if req.HasAttachment() {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{Data: req.Attachment, MIMEType: req.MediaType},
		})
	}

	resp, err := c.cli.Models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Role: genai.RoleUser, Parts: parts}},
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   ResponseSchema(),
			Temperature:      genai.Ptr(c.temperature),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

// ResponseSchema declares the Result shape to the model.
func ResponseSchema() *genai.Schema {
	levels := make([]string, 0, 3)
	for _, l := range analysis.RiskLevels() {
		levels = append(levels, string(l))
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"riskLevel": {
				Type:        genai.TypeString,
				Enum:        levels,
				Description: "The assessed risk level.",
			},
			"summary": {
				Type:        genai.TypeString,
				Description: "A brief summary of the analysis.",
			},
			"details": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "A list of specific findings or reasons for the assessment.",
			},
			"recommendation": {
				Type:        genai.TypeString,
				Description: "An actionable recommendation for the user.",
			},
		},
		Required: []string{"riskLevel", "summary", "details", "recommendation"},
	}
}
