package ai

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-chat-stats/internal/config"
	"telegram-chat-stats/internal/domain/ports/adapter"
)

// NewSummarizer picks Gemini when its key is set, then an OpenAI-compatible endpoint,
// and otherwise an adapter that reports the missing credential. The result is
// wrapped with the configured concurrency limit.
func NewSummarizer(ctx context.Context, cfg config.AIConfig, logger *zerolog.Logger) (adapter.Summarizer, error) {
	var inner adapter.Summarizer
	switch {
	case cfg.GeminiKey != "":
		g, err := NewGeminiAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, cfg.GeminiModel, NewTokenCounter(), cfg.MaxPromptTokens)
		if err != nil {
			return nil, err
		}
		inner = g
	case cfg.OpenAIKey != "":
		o, err := NewOpenAIAdapter(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, NewTokenCounter(), cfg.MaxPromptTokens)
		if err != nil {
			return nil, err
		}
		inner = o
	default:
		logger.Warn().Msg("no text generation key configured; /analyze will reply with a setup hint")
		inner = MissingCredentialAdapter{}
	}
	logger.Info().Str("provider", inner.Provider()).Int("concurrency", cfg.ConcurrentLimit).Msg("analysis provider ready")
	return NewLimitedAI(inner, cfg.ConcurrentLimit), nil
}
