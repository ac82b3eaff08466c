package ai

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"telegram-chat-stats/internal/domain/ports/adapter"
)

var _ adapter.Summarizer = (*GeminiAdapter)(nil)

const ProviderGemini = "gemini"

type GeminiAdapter struct {
	client    *genai.Client
	model     string
	counter   TokenCounter
	maxTokens int
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
// An empty baseURL keeps the SDK default endpoint.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, model string, counter TokenCounter, maxPromptTokens int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiAdapter{client: c, model: model, counter: counter, maxTokens: maxPromptTokens}, nil
}

func (g *GeminiAdapter) Provider() string { return ProviderGemini }

// Summarize sends a single generateContent request; there are no retries.
func (g *GeminiAdapter) Summarize(ctx context.Context, instructions string, messages []string) (string, error) {
	prompt := BuildPrompt(g.counter, instructions, messages, g.maxTokens)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
