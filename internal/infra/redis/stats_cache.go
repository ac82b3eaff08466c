package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/domain/model"
	"telegram-chat-stats/internal/domain/ports/repository"
	"telegram-chat-stats/internal/infra/metrics"
)

// scanBatch is the COUNT hint passed to every SCAN call.
const scanBatch = 100

var _ repository.StatsCache = (*StatsCache)(nil)

// StatsCache stores rendered report text under stats:* keys.
type StatsCache struct {
	client RedisClient
	log    *zerolog.Logger
}

func NewStatsCache(client RedisClient, logger *zerolog.Logger) *StatsCache {
	return &StatsCache{client: client, log: logger}
}

func (c *StatsCache) Get(ctx context.Context, key string) (string, error) {
	kind := model.ReportKind(key)
	val, err := c.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.IncCacheRequest(kind, "miss")
			return "", domain.ErrCacheMiss
		}
		metrics.IncCacheRequest(kind, "error")
		return "", fmt.Errorf("cache get %s: %w", key, err)
	}
	metrics.IncCacheRequest(kind, "hit")
	return val, nil
}

func (c *StatsCache) Set(ctx context.Context, key, payload string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, payload, ttl); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// InvalidateChat removes every report cached for the chat, across all ranges and users.
// Every pattern is attempted even when an earlier one fails.
func (c *StatsCache) InvalidateChat(ctx context.Context, chatID int64) error {
	total := 0
	var errs []error
	for _, pattern := range model.ChatCachePatterns(chatID) {
		n, err := c.deleteMatching(ctx, pattern)
		total += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	metrics.AddCacheKeysDeleted(total)
	if err := errors.Join(errs...); err != nil {
		metrics.IncCacheInvalidation("chat", "error")
		return err
	}
	metrics.IncCacheInvalidation("chat", "ok")
	return nil
}

// InvalidateAll drops every stats key; run when the calendar day changes.
func (c *StatsCache) InvalidateAll(ctx context.Context) error {
	n, err := c.deleteMatching(ctx, model.AllCachePattern())
	metrics.AddCacheKeysDeleted(n)
	if err != nil {
		metrics.IncCacheInvalidation("all", "error")
		return err
	}
	metrics.IncCacheInvalidation("all", "ok")
	c.log.Info().Int("keys", n).Msg("stats cache flushed")
	return nil
}

func (c *StatsCache) deleteMatching(ctx context.Context, pattern string) (int, error) {
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatch)
		if err != nil {
			return deleted, fmt.Errorf("scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...); err != nil {
				return deleted, fmt.Errorf("del %s: %w", pattern, err)
			}
			deleted += len(keys)
		}
		if next == 0 {
			return deleted, nil
		}
		cursor = next
	}
}
