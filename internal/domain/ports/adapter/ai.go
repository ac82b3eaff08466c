package adapter

import "context"

// Summarizer is the port for the external text-generation service.
// Implementations make a single attempt and return domain.ErrMissingCredential
// when no credential is configured.
type Summarizer interface {
	Provider() string
	Summarize(ctx context.Context, instructions string, messages []string) (string, error)
}
