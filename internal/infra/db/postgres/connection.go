package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"telegram-chat-stats/internal/domain"
)

// querier is the subset of *pgxpool.Pool (and pgx.Tx) the repositories use.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

var _ querier = (*pgxpool.Pool)(nil)

// NewPgxPool builds a lazily connecting pool; reachability is established by WaitForDB.
func NewPgxPool(ctx context.Context, url string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.LazyConnect = true
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool connect: %w", err)
	}
	return pool, nil
}

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WaitForDB probes the store up to retries times, sleeping delay after each failure.
// It returns domain.ErrStoreUnavailable wrapping the last error when the budget is exhausted.
func WaitForDB(ctx context.Context, db Pinger, retries int, delay time.Duration, log *zerolog.Logger) error {
	if retries <= 0 {
		retries = 1
	}
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		if lastErr = db.Ping(ctx); lastErr == nil {
			log.Info().Int("attempt", attempt).Msg("database is reachable")
			return nil
		}
		log.Warn().Err(lastErr).Int("attempt", attempt).Int("retries", retries).Msg("database not ready")

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, ctx.Err())
		case <-t.C:
		}
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, lastErr)
}
