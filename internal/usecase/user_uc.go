package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/domain/model"
	"telegram-chat-stats/internal/domain/ports/repository"
	"telegram-chat-stats/internal/infra/logging"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

type UserUseCase interface {
	// FindByHandle resolves "@handle" or "handle"; unknown handles yield domain.ErrNotFound.
	FindByHandle(ctx context.Context, handle string) (*model.User, error)
}

type userUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, logger *zerolog.Logger) *userUC {
	return &userUC{users: users, log: logger}
}

func (u *userUC) FindByHandle(ctx context.Context, handle string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.FindByHandle")()

	h := model.NormalizeHandle(handle)
	if h == "" {
		return nil, domain.ErrNotFound
	}
	return u.users.FindByUsername(ctx, h)
}
