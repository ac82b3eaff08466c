package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"telegram-chat-stats/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.Summarizer = (*OpenAIAdapter)(nil)

const ProviderOpenAI = "openai"

// OpenAIAdapter talks to any Chat Completions compatible endpoint.
type OpenAIAdapter struct {
	client    openai.Client
	model     string
	counter   TokenCounter
	maxTokens int
}

func NewOpenAIAdapter(apiKey, baseURL, model string, counter TokenCounter, maxPromptTokens int) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIAdapter{
		client:    openai.NewClient(opts...),
		model:     model,
		counter:   counter,
		maxTokens: maxPromptTokens,
	}, nil
}

func (o *OpenAIAdapter) Provider() string { return ProviderOpenAI }

func (o *OpenAIAdapter) Summarize(ctx context.Context, instructions string, messages []string) (string, error) {
	prompt := BuildPrompt(o.counter, instructions, messages, o.maxTokens)
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("status %d: %s", apiErr.StatusCode, apiErr.Message)
		}
		return "", err
	}
	for _, c := range resp.Choices {
		if text := strings.TrimSpace(c.Message.Content); text != "" {
			return text, nil
		}
	}
	return "", nil
}
