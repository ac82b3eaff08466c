package repository

import (
	"context"
	"time"
)

// StatsCache holds rendered report payloads. Get returns domain.ErrCacheMiss when absent.
type StatsCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, payload string, ttl time.Duration) error
	// InvalidateChat removes every entry scoped to chatID.
	InvalidateChat(ctx context.Context, chatID int64) error
	InvalidateAll(ctx context.Context) error
}
