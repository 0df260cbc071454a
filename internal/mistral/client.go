// Package mistral is the gateway to Mistral's OpenAI-compatible chat
// completions API. It builds prompts, constrains replies to JSON objects,
// and parses them into analysis results.
package mistral

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/professor-icebear/Mistral-Fact-Checker/internal/apierr"
	"github.com/professor-icebear/Mistral-Fact-Checker/internal/config"
	"github.com/professor-icebear/Mistral-Fact-Checker/internal/models"
)

// Client is safe for concurrent use; one instance is created at startup and
// shared by all requests.
type Client struct {
	api         *openai.Client
	textModel   string
	visionModel string
	temperature float32
	prompts     Prompts
}

// NewClient builds a Mistral client from config. Each call carries the
// configured timeout; no retries are attempted.
func NewClient(cfg config.Config, prompts Prompts) (*Client, error) {
	if cfg.MistralAPIKey == "" {
		return nil, errors.New("Mistral API key is required")
	}

	apiCfg := openai.DefaultConfig(cfg.MistralAPIKey)
	apiCfg.BaseURL = cfg.MistralBaseURL
	apiCfg.HTTPClient = &http.Client{Timeout: time.Duration(cfg.MistralTimeoutSeconds) * time.Second}

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		temperature: float32(cfg.Temperature),
		prompts:     prompts,
	}, nil
}

// AnalyzeText fact-checks textual content. contentKind labels what the
// content is in the prompt ("text" or "webpage").
func (c *Client) AnalyzeText(ctx context.Context, content, contentKind string) (models.AnalysisResult, error) {
	prompt := c.prompts.BuildTextPrompt(content, contentKind)

	slog.Info("Analyzing content with Mistral", "kind", contentKind, "model", c.textModel, "prompt_chars", len(prompt))

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.textModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature:    c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		slog.Error("Mistral API error", "kind", contentKind, "error", err)
		return models.AnalysisResult{}, apierr.Provider(err.Error())
	}

	return c.parseResult(resp, contentKind)
}

// AnalyzeImage fact-checks an uploaded image via the vision model. The image
// is inlined as a data URI content part tagged with its declared MIME type.
func (c *Client) AnalyzeImage(ctx context.Context, img models.EncodedImage) (models.AnalysisResult, error) {
	prompt := c.prompts.BuildImagePrompt()

	slog.Info("Analyzing image with Mistral vision model", "model", c.visionModel, "mime", img.MIME)

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: fmt.Sprintf("data:%s;base64,%s", img.MIME, img.Base64),
						},
					},
				},
			},
		},
		Temperature:    c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		slog.Error("Mistral vision API error", "error", err)
		return models.AnalysisResult{}, apierr.Provider(err.Error())
	}

	return c.parseResult(resp, "image")
}

func (c *Client) parseResult(resp openai.ChatCompletionResponse, contentKind string) (models.AnalysisResult, error) {
	if len(resp.Choices) == 0 {
		slog.Error("Mistral reply has no choices", "kind", contentKind)
		return models.AnalysisResult{}, apierr.Provider("empty response from model")
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
		slog.Error("Failed to parse Mistral response", "kind", contentKind, "error", err)
		return models.AnalysisResult{}, apierr.Provider("Invalid JSON response from AI")
	}

	slog.Info("Analysis completed", "kind", contentKind)
	return result, nil
}
