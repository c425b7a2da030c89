package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/safeweb/internal/domain/analysis"
	"github.com/bryanwahyu/safeweb/internal/infra/ai/prompt"
)

const (
	maxTokens    = 2048
	defaultModel = openai.GPT4oMini
)

type Client struct {
	*openai.Client
	Model       string
	Temperature float32
}

// NewClient builds a client; baseURL overrides the API endpoint when set.
func NewClient(apiKey, baseURL, model string, temperature float32) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{Client: openai.NewClientWithConfig(cfg), Model: model, Temperature: temperature}
}

// Generate implements analysis.Analyzer.
func (c *Client) Generate(ctx context.Context, req analysis.Request) (string, error) {
	model := c.Model
	if model == "" {
		model = defaultModel
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt}
	if req.HasAttachment() {
		user = openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: req.Prompt},
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    dataURL(req.MediaType, req.Attachment),
						Detail: openai.ImageURLDetailAuto,
					},
				},
			},
		}
	}

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			user,
		},
	}
	// reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens and reject temperature
	if isReasoningModel(model) {
		chatReq.MaxCompletionTokens = maxTokens
	} else {
		chatReq.MaxTokens = maxTokens
		chatReq.Temperature = c.Temperature
	}

	resp, err := c.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		if isQuotaError(err) {
			return "", fmt.Errorf("%w: %v", analysis.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	return strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") ||
		strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5")
}

func isQuotaError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var reqErr *openai.RequestError
	return errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests
}

func dataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
