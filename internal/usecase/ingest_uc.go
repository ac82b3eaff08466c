package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-chat-stats/internal/domain/model"
	"telegram-chat-stats/internal/domain/ports/repository"
	"telegram-chat-stats/internal/infra/logging"
	"telegram-chat-stats/internal/infra/metrics"
)

// Compile-time check
var _ IngestUseCase = (*ingestUC)(nil)

// IngestUseCase records group chat messages. It never reports failure to the caller.
type IngestUseCase interface {
	Record(ctx context.Context, author *model.User, chatID int64, text string)
}

const (
	StepUserUpsert      = "user_upsert"
	StepMessageInsert   = "message_insert"
	StepCacheInvalidate = "cache_invalidate"

	StepOK      = "ok"
	StepFailed  = "failed"
	StepSkipped = "skipped"
)

// IngestStep is the outcome of one ingest step. Failed steps carry Err.
type IngestStep struct {
	Name   string
	Result string
	Err    error
}

type ingestUC struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	cache    repository.StatsCache
	log      *zerolog.Logger
	dev      bool
}

func NewIngestUseCase(users repository.UserRepository, messages repository.MessageRepository, cache repository.StatsCache, logger *zerolog.Logger, dev bool) *ingestUC {
	return &ingestUC{users: users, messages: messages, cache: cache, log: logger, dev: dev}
}

func (u *ingestUC) Record(ctx context.Context, author *model.User, chatID int64, text string) {
	defer logging.TraceDuration(u.log, "IngestUC.Record")()

	log := logging.With(ctx, u.log)
	for _, step := range u.record(ctx, author, chatID, text) {
		metrics.IncIngestStep(step.Name, step.Result)
		if step.Result != StepFailed {
			continue
		}
		// Swallowed on purpose: ingest is best-effort and the message is lost for statistics.
		log.Error().Err(step.Err).
			Str("step", step.Name).
			Int64("chat_id", chatID).
			Str("text", logging.Redact(text, u.dev)).
			Msg("ingest step failed")
	}
}

// record runs upsert, insert and invalidation in order. A failed upsert skips the
// insert since the message would reference a missing user; invalidation always runs.
func (u *ingestUC) record(ctx context.Context, author *model.User, chatID int64, text string) []IngestStep {
	steps := make([]IngestStep, 0, 3)

	userOK := false
	switch {
	case author == nil || author.ID == 0:
		steps = append(steps, IngestStep{Name: StepUserUpsert, Result: StepSkipped})
	default:
		if err := u.users.Upsert(ctx, author); err != nil {
			steps = append(steps, IngestStep{Name: StepUserUpsert, Result: StepFailed, Err: err})
		} else {
			userOK = true
			steps = append(steps, IngestStep{Name: StepUserUpsert, Result: StepOK})
		}
	}

	if !userOK {
		steps = append(steps, IngestStep{Name: StepMessageInsert, Result: StepSkipped})
	} else if msg, err := model.NewMessage(author.ID, chatID, text); err != nil {
		steps = append(steps, IngestStep{Name: StepMessageInsert, Result: StepSkipped, Err: err})
	} else if err := u.messages.Save(ctx, msg); err != nil {
		steps = append(steps, IngestStep{Name: StepMessageInsert, Result: StepFailed, Err: err})
	} else {
		steps = append(steps, IngestStep{Name: StepMessageInsert, Result: StepOK})
	}

	if err := u.cache.InvalidateChat(ctx, chatID); err != nil {
		steps = append(steps, IngestStep{Name: StepCacheInvalidate, Result: StepFailed, Err: err})
	} else {
		steps = append(steps, IngestStep{Name: StepCacheInvalidate, Result: StepOK})
	}
	return steps
}
