//go:build !integration

package usecase

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/domain/model"
)

// memUserRepo is a small in-memory UserRepository.
type memUserRepo struct {
	mu        sync.RWMutex
	store     map[int64]model.User
	upsertErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[int64]model.User)}
}

func (m *memUserRepo) Upsert(ctx context.Context, u *model.User) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[u.ID] = *u
	return nil
}

func (m *memUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Username != "" && strings.EqualFold(u.Username, username) {
			cp := u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// memMessageRepo keeps messages in insertion order and answers the aggregation
// queries with the same ordering rules as the SQL implementation.
type memMessageRepo struct {
	mu      sync.RWMutex
	users   *memUserRepo
	msgs    []model.Message
	nextID  int64
	now     func() time.Time
	saveErr error
	readErr error
	reads   int
}

func newMemMessageRepo(users *memUserRepo) *memMessageRepo {
	return &memMessageRepo{users: users, now: time.Now}
}

func (m *memMessageRepo) Save(ctx context.Context, msg *model.Message) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	msg.ID = m.nextID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = m.now()
	}
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memMessageRepo) filter(chatID int64, from *time.Time) []model.Message {
	var out []model.Message
	for _, msg := range m.msgs {
		if msg.ChatID != chatID {
			continue
		}
		if from != nil && msg.CreatedAt.Before(*from) {
			continue
		}
		out = append(out, msg)
	}
	return out
}

func (m *memMessageRepo) counts(chatID int64, from *time.Time) []model.UserCount {
	byUser := map[int64]int{}
	for _, msg := range m.filter(chatID, from) {
		byUser[msg.UserID]++
	}
	out := make([]model.UserCount, 0, len(byUser))
	m.users.mu.RLock()
	for id, n := range byUser {
		out = append(out, model.UserCount{User: m.users.store[id], Count: n})
	}
	m.users.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].User.ID < out[j].User.ID
	})
	return out
}

func (m *memMessageRepo) read() error {
	m.reads++
	return m.readErr
}

func (m *memMessageRepo) TopUsers(ctx context.Context, chatID int64, from *time.Time, limit int) ([]model.UserCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.read(); err != nil {
		return nil, err
	}
	out := m.counts(chatID, from)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memMessageRepo) ChatTotals(ctx context.Context, chatID int64, from *time.Time) (model.ChatTotals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.read(); err != nil {
		return model.ChatTotals{}, err
	}
	msgs := m.filter(chatID, from)
	users := map[int64]struct{}{}
	for _, msg := range msgs {
		users[msg.UserID] = struct{}{}
	}
	return model.ChatTotals{Messages: len(msgs), Users: len(users)}, nil
}

func (m *memMessageRepo) MessagesByUser(ctx context.Context, userID int64, limit int, chatID *int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.read(); err != nil {
		return nil, err
	}
	var out []string
	for i := len(m.msgs) - 1; i >= 0 && len(out) < limit; i-- {
		msg := m.msgs[i]
		if msg.UserID != userID || (chatID != nil && msg.ChatID != *chatID) {
			continue
		}
		out = append(out, msg.Text)
	}
	return out, nil
}

func (m *memMessageRepo) UserMessageCount(ctx context.Context, chatID, userID int64, from *time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.read(); err != nil {
		return 0, err
	}
	n := 0
	for _, msg := range m.filter(chatID, from) {
		if msg.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memMessageRepo) UserRank(ctx context.Context, chatID, userID int64, from *time.Time) (model.RankInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.read(); err != nil {
		return model.RankInfo{}, err
	}
	all := m.counts(chatID, from)
	info := model.RankInfo{TotalUsers: len(all)}
	for i, row := range all {
		if row.User.ID == userID {
			info.Rank = i + 1
		}
	}
	return info, nil
}

// memStatsCache is an in-memory StatsCache with switchable failures.
type memStatsCache struct {
	mu            sync.Mutex
	data          map[string]string
	ttl           map[string]time.Duration
	getErr        error
	setErr        error
	invalidateErr error
	invalidated   []int64
}

func newMemStatsCache() *memStatsCache {
	return &memStatsCache{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (c *memStatsCache) Get(ctx context.Context, key string) (string, error) {
	if c.getErr != nil {
		return "", c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return v, nil
}

func (c *memStatsCache) Set(ctx context.Context, key, payload string, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = payload
	c.ttl[key] = ttl
	return nil
}

func (c *memStatsCache) InvalidateChat(ctx context.Context, chatID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, chatID)
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	for _, pattern := range model.ChatCachePatterns(chatID) {
		for k := range c.data {
			if ok, _ := path.Match(pattern, k); ok {
				delete(c.data, k)
			}
		}
	}
	return nil
}

func (c *memStatsCache) InvalidateAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = map[string]string{}
	return nil
}

// keyTranslator echoes keys and args so assertions don't depend on locale text.
type keyTranslator struct{}

func (keyTranslator) T(key string, args ...interface{}) string {
	parts := []string{key}
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, "|")
}

// fakeSummarizer returns a canned reply and records the prompt it was given.
type fakeSummarizer struct {
	reply        string
	err          error
	instructions string
	got          []string
}

func (f *fakeSummarizer) Provider() string { return "fake" }

func (f *fakeSummarizer) Summarize(ctx context.Context, instructions string, messages []string) (string, error) {
	f.instructions = instructions
	f.got = messages
	return f.reply, f.err
}
