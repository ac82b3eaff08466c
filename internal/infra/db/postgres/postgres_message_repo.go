package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-chat-stats/internal/domain/model"
	"telegram-chat-stats/internal/domain/ports/repository"
	"telegram-chat-stats/internal/infra/metrics"
)

var _ repository.MessageRepository = (*PostgresMessageRepo)(nil)

// PostgresMessageRepo stores messages and runs the aggregation queries.
// Every query is a plain read under the default READ COMMITTED isolation.
type PostgresMessageRepo struct {
	db querier
}

func NewPostgresMessageRepo(pool *pgxpool.Pool) *PostgresMessageRepo {
	return &PostgresMessageRepo{db: pool}
}

func (r *PostgresMessageRepo) Save(ctx context.Context, m *model.Message) error {
	const q = `
INSERT INTO messages (user_id, chat_id, text)
VALUES ($1, $2, $3)
RETURNING id, created_at;`
	if err := r.db.QueryRow(ctx, q, m.UserID, m.ChatID, m.Text).Scan(&m.ID, &m.CreatedAt); err != nil {
		metrics.IncDBQueryError("message_insert")
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *PostgresMessageRepo) TopUsers(ctx context.Context, chatID int64, from *time.Time, limit int) ([]model.UserCount, error) {
	const q = `
SELECT u.id, COALESCE(u.username, ''), COALESCE(u.first_name, ''), COALESCE(u.last_name, ''),
       COUNT(*)::int AS cnt
  FROM messages m
  JOIN users u ON u.id = m.user_id
 WHERE m.chat_id = $1
   AND ($2::timestamptz IS NULL OR m.created_at >= $2)
 GROUP BY u.id, u.username, u.first_name, u.last_name
 ORDER BY cnt DESC, u.id ASC
 LIMIT $3;`
	rows, err := r.db.Query(ctx, q, chatID, from, limit)
	if err != nil {
		metrics.IncDBQueryError("top_users")
		return nil, fmt.Errorf("top users: %w", err)
	}
	defer rows.Close()

	out := make([]model.UserCount, 0, limit)
	for rows.Next() {
		var uc model.UserCount
		if err := rows.Scan(&uc.User.ID, &uc.User.Username, &uc.User.FirstName, &uc.User.LastName, &uc.Count); err != nil {
			return nil, fmt.Errorf("scan top users: %w", err)
		}
		out = append(out, uc)
	}
	if err := rows.Err(); err != nil {
		metrics.IncDBQueryError("top_users")
		return nil, fmt.Errorf("top users rows: %w", err)
	}
	return out, nil
}

func (r *PostgresMessageRepo) ChatTotals(ctx context.Context, chatID int64, from *time.Time) (model.ChatTotals, error) {
	const q = `
SELECT COUNT(*)::int, COUNT(DISTINCT user_id)::int
  FROM messages
 WHERE chat_id = $1
   AND ($2::timestamptz IS NULL OR created_at >= $2);`
	var t model.ChatTotals
	if err := r.db.QueryRow(ctx, q, chatID, from).Scan(&t.Messages, &t.Users); err != nil {
		metrics.IncDBQueryError("chat_totals")
		return model.ChatTotals{}, fmt.Errorf("chat totals: %w", err)
	}
	return t, nil
}

func (r *PostgresMessageRepo) MessagesByUser(ctx context.Context, userID int64, limit int, chatID *int64) ([]string, error) {
	const q = `
SELECT text
  FROM messages
 WHERE user_id = $1
   AND ($3::bigint IS NULL OR chat_id = $3)
 ORDER BY created_at DESC, id DESC
 LIMIT $2;`
	rows, err := r.db.Query(ctx, q, userID, limit, chatID)
	if err != nil {
		metrics.IncDBQueryError("messages_by_user")
		return nil, fmt.Errorf("messages by user: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan message text: %w", err)
		}
		out = append(out, text)
	}
	if err := rows.Err(); err != nil {
		metrics.IncDBQueryError("messages_by_user")
		return nil, fmt.Errorf("messages by user rows: %w", err)
	}
	return out, nil
}

func (r *PostgresMessageRepo) UserMessageCount(ctx context.Context, chatID, userID int64, from *time.Time) (int, error) {
	const q = `
SELECT COUNT(*)::int
  FROM messages
 WHERE chat_id = $1 AND user_id = $2
   AND ($3::timestamptz IS NULL OR created_at >= $3);`
	var n int
	if err := r.db.QueryRow(ctx, q, chatID, userID, from).Scan(&n); err != nil {
		metrics.IncDBQueryError("user_message_count")
		return 0, fmt.Errorf("user message count: %w", err)
	}
	return n, nil
}

// UserRank orders the complete per-user count set of the chat, so rank and
// total are exact even when the leaderboard shows only the first rows.
func (r *PostgresMessageRepo) UserRank(ctx context.Context, chatID, userID int64, from *time.Time) (model.RankInfo, error) {
	const q = `
WITH counts AS (
    SELECT user_id, COUNT(*) AS cnt
      FROM messages
     WHERE chat_id = $1
       AND ($2::timestamptz IS NULL OR created_at >= $2)
     GROUP BY user_id
), ranked AS (
    SELECT user_id, ROW_NUMBER() OVER (ORDER BY cnt DESC, user_id ASC) AS pos
      FROM counts
)
SELECT COALESCE((SELECT pos FROM ranked WHERE user_id = $3), 0)::int,
       (SELECT COUNT(*) FROM counts)::int;`
	var info model.RankInfo
	if err := r.db.QueryRow(ctx, q, chatID, from, userID).Scan(&info.Rank, &info.TotalUsers); err != nil {
		metrics.IncDBQueryError("user_rank")
		return model.RankInfo{}, fmt.Errorf("user rank: %w", err)
	}
	return info, nil
}
