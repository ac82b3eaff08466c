package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/domain/model"
	"telegram-chat-stats/internal/domain/ports/repository"
	"telegram-chat-stats/internal/infra/metrics"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

// Upsert writes the latest seen handle and names. Handles are unique ignoring case, so
// it is first released by whichever other user held it before (handles move between accounts).
func (r *PostgresUserRepo) Upsert(ctx context.Context, u *model.User) error {
	const release = `UPDATE users SET username = NULL WHERE lower(username) = lower($2) AND id <> $1;`
	const upsert = `
INSERT INTO users (id, username, first_name, last_name)
VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''))
ON CONFLICT (id) DO UPDATE SET
  username = EXCLUDED.username, first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name;
`
	err := r.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if u.Username != "" {
			if _, err := tx.Exec(ctx, release, u.ID, u.Username); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, upsert, u.ID, u.Username, u.FirstName, u.LastName)
		return err
	})
	if err != nil {
		metrics.IncDBQueryError("user_upsert")
		return fmt.Errorf("upsert user %d: %w", u.ID, err)
	}
	return nil
}

func (r *PostgresUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `
SELECT id, COALESCE(username, ''), COALESCE(first_name, ''), COALESCE(last_name, '')
  FROM users WHERE lower(username) = lower($1)
 LIMIT 1;`
	handle := model.NormalizeHandle(username)
	if handle == "" {
		return nil, domain.ErrNotFound
	}
	var u model.User
	if err := r.pool.QueryRow(ctx, q, handle).Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		metrics.IncDBQueryError("user_by_username")
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &u, nil
}
