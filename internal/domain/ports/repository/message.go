package repository

import (
	"context"
	"time"

	"telegram-chat-stats/internal/domain/model"
)

// -----------------------------
// Messages and aggregations
// -----------------------------

// MessageRepository persists messages and computes read-only aggregations.
// A nil `from` means no lower bound. Orderings by count break ties by ascending user id.
type MessageRepository interface {
	Save(ctx context.Context, m *model.Message) error

	TopUsers(ctx context.Context, chatID int64, from *time.Time, limit int) ([]model.UserCount, error)
	ChatTotals(ctx context.Context, chatID int64, from *time.Time) (model.ChatTotals, error)
	MessagesByUser(ctx context.Context, userID int64, limit int, chatID *int64) ([]string, error)
	UserMessageCount(ctx context.Context, chatID, userID int64, from *time.Time) (int, error)
	// UserRank ranks over every user of the chat, not just the leaderboard slice.
	UserRank(ctx context.Context, chatID, userID int64, from *time.Time) (model.RankInfo, error)
}
