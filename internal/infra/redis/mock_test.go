//go:build !integration

package redis

import (
	"context"
	"path"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// mockRedisClient is an in-memory RedisClient. Scan returns one key per page
// so cursor handling is exercised.
type mockRedisClient struct {
	mu      sync.Mutex
	data    map[string]string
	ttl     map[string]time.Duration
	GetErr  error
	SetErr  error
	ScanErr error
	// ScanErrFor fails Scan only for this exact pattern.
	ScanErrFor string
	scans      int
	snap       []string
}

func newMockRedisClient() *mockRedisClient {
	return &mockRedisClient{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (m *mockRedisClient) Ping(ctx context.Context) error { return nil }

func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	m.ttl[key] = expiration
	return nil
}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetErr != nil {
		return "", m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.data[key], 10, 64)
	n++
	m.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ttl[key] = expiration
	return nil
}

func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
		delete(m.ttl, k)
	}
	return nil
}

func (m *mockRedisClient) Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	if m.ScanErr != nil && (m.ScanErrFor == "" || m.ScanErrFor == match) {
		return nil, 0, m.ScanErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans++
	if cursor == 0 {
		m.snap = m.snap[:0]
		for k := range m.data {
			if ok, _ := path.Match(match, k); ok {
				m.snap = append(m.snap, k)
			}
		}
		sort.Strings(m.snap)
	}
	if int(cursor) >= len(m.snap) {
		return nil, 0, nil
	}
	next := cursor + 1
	if int(next) >= len(m.snap) {
		next = 0
	}
	return []string{m.snap[cursor]}, next, nil
}

func (m *mockRedisClient) Close() error { return nil }
