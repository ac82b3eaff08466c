package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/domain/ports/adapter"
	"telegram-chat-stats/internal/infra/metrics"
)

// Compile-time check
var _ adapter.Summarizer = (*limitedAI)(nil)

// limitedAI bounds concurrent provider calls and records their outcome.
type limitedAI struct {
	inner adapter.Summarizer
	sem   chan struct{}
}

func NewLimitedAI(inner adapter.Summarizer, maxConcurrent int) adapter.Summarizer {
	l := &limitedAI{inner: inner}
	if maxConcurrent > 0 {
		l.sem = make(chan struct{}, maxConcurrent)
	}
	return l
}

func (l *limitedAI) Provider() string { return l.inner.Provider() }

func (l *limitedAI) Summarize(ctx context.Context, instructions string, messages []string) (string, error) {
	if l.sem != nil {
		select {
		case l.sem <- struct{}{}:
			defer func() { <-l.sem }()
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	start := time.Now()
	out, err := l.inner.Summarize(ctx, instructions, messages)
	metrics.ObserveAnalysis(l.inner.Provider(), outcome(out, err), time.Since(start).Milliseconds(), err == nil)
	return out, err
}

func outcome(out string, err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return "missing_credential"
	case err != nil:
		return "error"
	case strings.TrimSpace(out) == "":
		return "empty"
	default:
		return "ok"
	}
}
