package ai

import (
	"context"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/domain/ports/adapter"
)

var _ adapter.Summarizer = (*MissingCredentialAdapter)(nil)

// MissingCredentialAdapter stands in when no provider key is configured.
type MissingCredentialAdapter struct{}

func (MissingCredentialAdapter) Provider() string { return "none" }

func (MissingCredentialAdapter) Summarize(ctx context.Context, instructions string, messages []string) (string, error) {
	return "", domain.ErrMissingCredential
}
