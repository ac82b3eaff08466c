package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/domain/ports/adapter"
	"telegram-chat-stats/internal/domain/ports/repository"
	"telegram-chat-stats/internal/infra/logging"
)

// Compile-time check
var _ AnalyzeUseCase = (*analyzeUC)(nil)

type AnalyzeUseCase interface {
	// Analyze summarises the most recent messages of userID, optionally within one chat.
	// It returns domain.ErrNoMessages when there is nothing to send. Provider failures
	// are folded into the returned text and never surface as errors.
	Analyze(ctx context.Context, userID int64, chatID *int64) (string, error)
}

type analyzeUC struct {
	messages   repository.MessageRepository
	summarizer adapter.Summarizer
	tr         Translator
	limit      int
	log        *zerolog.Logger
}

func NewAnalyzeUseCase(messages repository.MessageRepository, summarizer adapter.Summarizer, tr Translator, limit int, logger *zerolog.Logger) *analyzeUC {
	if limit <= 0 {
		limit = 100
	}
	return &analyzeUC{messages: messages, summarizer: summarizer, tr: tr, limit: limit, log: logger}
}

func (a *analyzeUC) Analyze(ctx context.Context, userID int64, chatID *int64) (string, error) {
	defer logging.TraceDuration(a.log, "AnalyzeUC.Analyze")()

	msgs, err := a.messages.MessagesByUser(ctx, userID, a.limit, chatID)
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		return "", domain.ErrNoMessages
	}
	summary, err := a.summarizer.Summarize(ctx, a.tr.T("analyze_prompt"), msgs)
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return a.tr.T("analyze_missing_key"), nil
	case err != nil:
		logging.With(ctx, a.log).Warn().Err(err).Str("provider", a.summarizer.Provider()).Msg("analysis failed")
		return a.tr.T("analyze_error", a.summarizer.Provider(), err.Error()), nil
	}
	if strings.TrimSpace(summary) == "" {
		return a.tr.T("analyze_empty"), nil
	}
	return summary, nil
}
