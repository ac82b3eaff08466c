package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"telegram-chat-stats/internal/config"
	"telegram-chat-stats/internal/infra/logging"
	"telegram-chat-stats/internal/infra/metrics"
)

const jobTimeout = 30 * time.Second

// CacheFlusher drops every cached statistics report. The "day" window restarts at
// midnight, so cached day reports must not outlive it.
type CacheFlusher interface {
	InvalidateAll(ctx context.Context) error
}

// PoolStat reports connection pool occupancy; adapt *pgxpool.Pool with PgxPoolStats.
type PoolStat func() (total, idle, inUse int32)

// Scheduler runs the periodic maintenance jobs on a cron clock.
type Scheduler struct {
	cron  *cron.Cron
	cache CacheFlusher
	stats PoolStat
	log   *zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func New(cfg config.SchedulerConfig, loc *time.Location, cache CacheFlusher, stats PoolStat, logger *zerolog.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Scheduler{
		cron:  cron.New(cron.WithLocation(loc)),
		cache: cache,
		stats: stats,
		log:   logger,
	}
	if cache != nil {
		if _, err := s.cron.AddFunc(cfg.CacheFlushCron, s.flushCache); err != nil {
			return nil, fmt.Errorf("cache_flush_cron %q: %w", cfg.CacheFlushCron, err)
		}
	}
	if stats != nil {
		if _, err := s.cron.AddFunc(cfg.PoolStatsCron, s.samplePool); err != nil {
			return nil, fmt.Errorf("pool_stats_cron %q: %w", cfg.PoolStatsCron, err)
		}
	}
	return s, nil
}

// Start is a no-op when already started.
func (s *Scheduler) Start(parent context.Context) {
	if s.ctx != nil {
		return
	}
	s.ctx, s.cancel = context.WithCancel(parent)
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.cron.Stop().Done()
	s.ctx, s.cancel = nil, nil
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) jobContext() (context.Context, context.CancelFunc) {
	parent := s.ctx
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(logging.WithNewTraceID(parent), jobTimeout)
}

func (s *Scheduler) flushCache() {
	ctx, cancel := s.jobContext()
	defer cancel()
	if err := s.cache.InvalidateAll(ctx); err != nil {
		logging.With(ctx, s.log).Error().Err(err).Msg("scheduled cache flush failed")
	}
}

func (s *Scheduler) samplePool() {
	metrics.SetDBPoolStats(s.stats())
}
