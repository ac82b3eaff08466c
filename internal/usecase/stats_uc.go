package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-chat-stats/internal/domain"
	"telegram-chat-stats/internal/domain/model"
	"telegram-chat-stats/internal/domain/ports/repository"
	"telegram-chat-stats/internal/infra/logging"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	// LeaderboardReport and UserReport are served from the cache when possible.
	LeaderboardReport(ctx context.Context, chatID int64, r model.TimeRange) (*model.Report, error)
	UserReport(ctx context.Context, chatID, userID int64, r model.TimeRange) (*model.Report, error)
	// TopUsers always reads the store.
	TopUsers(ctx context.Context, chatID int64, r model.TimeRange) ([]model.UserCount, error)
	MyRank(ctx context.Context, chatID, userID int64) (model.RankInfo, int, error)
}

type StatsOptions struct {
	CacheTTL time.Duration
	TopLimit int
	Location *time.Location
}

type statsUC struct {
	messages repository.MessageRepository
	cache    repository.StatsCache
	tr       Translator
	opts     StatsOptions
	now      func() time.Time
	log      *zerolog.Logger
}

func NewStatsUseCase(messages repository.MessageRepository, cache repository.StatsCache, tr Translator, opts StatsOptions, logger *zerolog.Logger) *statsUC {
	if opts.TopLimit <= 0 {
		opts.TopLimit = 10
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &statsUC{
		messages: messages,
		cache:    cache,
		tr:       tr,
		opts:     opts,
		now:      time.Now,
		log:      logger,
	}
}

func (s *statsUC) from(r model.TimeRange) *time.Time {
	return r.Start(s.now().In(s.opts.Location))
}

func (s *statsUC) LeaderboardReport(ctx context.Context, chatID int64, r model.TimeRange) (*model.Report, error) {
	defer logging.TraceDuration(s.log, "StatsUC.LeaderboardReport")()

	key := model.LeaderboardCacheKey(chatID, r)
	text, err := s.cached(ctx, key, func() (string, error) {
		from := s.from(r)
		top, err := s.messages.TopUsers(ctx, chatID, from, s.opts.TopLimit)
		if err != nil {
			return "", err
		}
		if len(top) == 0 {
			return s.tr.T("stats_no_data", rangeLabel(s.tr, r)), nil
		}
		totals, err := s.messages.ChatTotals(ctx, chatID, from)
		if err != nil {
			return "", err
		}
		return s.renderLeaderboard(r, top, totals), nil
	})
	if err != nil {
		return nil, err
	}
	return &model.Report{Text: text, Range: r, Ranges: model.FollowUpRanges}, nil
}

func (s *statsUC) UserReport(ctx context.Context, chatID, userID int64, r model.TimeRange) (*model.Report, error) {
	defer logging.TraceDuration(s.log, "StatsUC.UserReport")()

	key := model.UserReportCacheKey(chatID, userID, r)
	text, err := s.cached(ctx, key, func() (string, error) {
		from := s.from(r)
		count, err := s.messages.UserMessageCount(ctx, chatID, userID, from)
		if err != nil {
			return "", err
		}
		totals, err := s.messages.ChatTotals(ctx, chatID, from)
		if err != nil {
			return "", err
		}
		rank, err := s.messages.UserRank(ctx, chatID, userID, from)
		if err != nil {
			return "", err
		}
		return s.tr.T("user_stats", rangeLabel(s.tr, r), count, FormatRank(s.tr, rank), totals.Messages), nil
	})
	if err != nil {
		return nil, err
	}
	return &model.Report{Text: text, Range: r, Ranges: model.FollowUpRanges}, nil
}

func (s *statsUC) TopUsers(ctx context.Context, chatID int64, r model.TimeRange) ([]model.UserCount, error) {
	return s.messages.TopUsers(ctx, chatID, s.from(r), s.opts.TopLimit)
}

// MyRank returns the caller's all-time rank and message count.
func (s *statsUC) MyRank(ctx context.Context, chatID, userID int64) (model.RankInfo, int, error) {
	rank, err := s.messages.UserRank(ctx, chatID, userID, nil)
	if err != nil {
		return model.RankInfo{}, 0, err
	}
	count, err := s.messages.UserMessageCount(ctx, chatID, userID, nil)
	if err != nil {
		return model.RankInfo{}, 0, err
	}
	return rank, count, nil
}

func (s *statsUC) renderLeaderboard(r model.TimeRange, top []model.UserCount, totals model.ChatTotals) string {
	var b strings.Builder
	b.WriteString(s.tr.T("stats_header", rangeLabel(s.tr, r)))
	b.WriteString("\n\n")
	for i, row := range top {
		b.WriteString(s.tr.T("stats_line", i+1, row.User.DisplayName(), row.Count))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.tr.T("stats_footer", totals.Messages, totals.Users))
	return b.String()
}

// cached returns the payload under key, computing and storing it on a miss.
// The cache is optional: read errors fall through to compute and write errors are only logged.
// Concurrent misses for one key both compute; the last write wins.
func (s *statsUC) cached(ctx context.Context, key string, compute func() (string, error)) (string, error) {
	log := logging.With(ctx, s.log)

	text, err := s.cache.Get(ctx, key)
	if err == nil {
		return text, nil
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		log.Warn().Err(err).Str("key", key).Msg("stats cache read failed, computing")
	}

	text, err = compute()
	if err != nil {
		return "", err
	}
	if err := s.cache.Set(ctx, key, text, s.opts.CacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("stats cache write failed")
	}
	return text, nil
}
