//go:build !integration

package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/domain/model"
)

func TestStatsCache_GetSet(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()
	client := newMockRedisClient()
	cache := NewStatsCache(client, &log)
	key := model.LeaderboardCacheKey(-1, model.RangeWeek)

	if _, err := cache.Get(ctx, key); !errors.Is(err, domain.ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
	if err := cache.Set(ctx, key, "report", 20*time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := cache.Get(ctx, key)
	if err != nil || got != "report" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if client.ttl[key] != 20*time.Minute {
		t.Errorf("expected ttl 20m, got %v", client.ttl[key])
	}

	client.GetErr = errors.New("connection reset")
	if _, err := cache.Get(ctx, key); err == nil || errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("transport errors must not look like a miss, got %v", err)
	}
}

func TestStatsCache_InvalidateChat(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()
	client := newMockRedisClient()
	cache := NewStatsCache(client, &log)

	const chat, other = int64(-100), int64(-200)
	ownKeys := []string{
		model.LeaderboardCacheKey(chat, model.RangeAll),
		model.LeaderboardCacheKey(chat, model.RangeDay),
		model.UserReportCacheKey(chat, 1, model.RangeWeek),
		model.UserReportCacheKey(chat, 2, model.RangeMonth),
	}
	otherKey := model.LeaderboardCacheKey(other, model.RangeAll)
	for _, k := range append(ownKeys, otherKey, "rate_limit:1:stats") {
		_ = client.Set(ctx, k, "x", time.Minute)
	}

	if err := cache.InvalidateChat(ctx, chat); err != nil {
		t.Fatalf("InvalidateChat: %v", err)
	}
	for _, k := range ownKeys {
		if _, ok := client.data[k]; ok {
			t.Errorf("key %q should have been deleted", k)
		}
	}
	if _, ok := client.data[otherKey]; !ok {
		t.Error("another chat's key must survive")
	}
	if _, ok := client.data["rate_limit:1:stats"]; !ok {
		t.Error("non-stats key must survive")
	}
	if client.scans < len(ownKeys) {
		t.Errorf("expected paged scanning, got %d scan calls", client.scans)
	}
}

func TestStatsCache_InvalidateAll(t *testing.T) {
	ctx := context.Background()
	log := zerolog.Nop()
	client := newMockRedisClient()
	cache := NewStatsCache(client, &log)

	_ = client.Set(ctx, model.LeaderboardCacheKey(-1, model.RangeDay), "a", time.Minute)
	_ = client.Set(ctx, model.UserReportCacheKey(-2, 5, model.RangeDay), "b", time.Minute)
	_ = client.Set(ctx, "rate_limit:1:stats", "1", time.Minute)

	if err := cache.InvalidateAll(ctx); err != nil {
		t.Fatalf("InvalidateAll: %v", err)
	}
	if len(client.data) != 1 {
		t.Errorf("expected only the rate limit key to remain, got %v", client.data)
	}
}

func TestStatsCache_InvalidateScanError(t *testing.T) {
	log := zerolog.Nop()
	client := newMockRedisClient()
	client.ScanErr = errors.New("boom")
	cache := NewStatsCache(client, &log)
	if err := cache.InvalidateChat(context.Background(), -1); err == nil {
		t.Error("expected scan error to surface")
	}
}

func TestStatsCache_InvalidateChatTriesEveryPattern(t *testing.T) {
	log := zerolog.Nop()
	ctx := context.Background()
	client := newMockRedisClient()
	cache := NewStatsCache(client, &log)

	const chat = int64(-7)
	topKey := model.LeaderboardCacheKey(chat, model.RangeAll)
	userKey := model.UserReportCacheKey(chat, 42, model.RangeWeek)
	for _, k := range []string{topKey, userKey} {
		if err := cache.Set(ctx, k, "payload", time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	client.ScanErr = errors.New("timeout")
	client.ScanErrFor = model.ChatCachePatterns(chat)[0]

	if err := cache.InvalidateChat(ctx, chat); !errors.Is(err, client.ScanErr) {
		t.Fatalf("expected the scan error to surface, got %v", err)
	}
	if _, ok := client.data[userKey]; ok {
		t.Error("user reports should be removed even when the leaderboard pattern fails")
	}
	if _, ok := client.data[topKey]; !ok {
		t.Error("leaderboard key should survive its failed scan")
	}
}

func TestRateLimiter(t *testing.T) {
	ctx := context.Background()
	client := newMockRedisClient()
	rl := NewRateLimiter(client)
	key := UserCommandKey(42, "analyze")

	for i := 1; i <= 2; i++ {
		ok, err := rl.Allow(ctx, key, 2, time.Minute)
		if err != nil || !ok {
			t.Fatalf("call %d: expected allowed, got %v, %v", i, ok, err)
		}
	}
	ok, err := rl.Allow(ctx, key, 2, time.Minute)
	if err != nil || ok {
		t.Fatalf("third call should be limited, got %v, %v", ok, err)
	}
	if client.ttl[key] != time.Minute {
		t.Errorf("expected window to be set on first hit, got %v", client.ttl[key])
	}
}
