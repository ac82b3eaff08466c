// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"telegram-chat-stats/internal/application"
	"telegram-chat-stats/internal/config"
	aiAdapters "telegram-chat-stats/internal/infra/adapters/ai"
	tele "telegram-chat-stats/internal/infra/adapters/telegram"
	"telegram-chat-stats/internal/infra/api"
	pg "telegram-chat-stats/internal/infra/db/postgres"
	"telegram-chat-stats/internal/infra/i18n"
	"telegram-chat-stats/internal/infra/logging"
	"telegram-chat-stats/internal/infra/metrics"
	red "telegram-chat-stats/internal/infra/redis"
	"telegram-chat-stats/internal/infra/scheduler"
	"telegram-chat-stats/internal/infra/worker"
	"telegram-chat-stats/internal/usecase"
)

// Set with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted message text)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	loc, err := cfg.Stats.Location()
	if err != nil {
		logger.Fatal().Err(err).Msg("timezone")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.WaitForDB(ctx, pool, cfg.Database.WaitRetries, cfg.Database.WaitDelay, logger); err != nil {
		logger.Fatal().Err(err).Msg("postgres unreachable")
	}
	if cfg.Database.AutoMigrate {
		if err := pg.RunMigrations(cfg.Database.URL, logger); err != nil {
			logger.Fatal().Err(err).Msg("migrations")
		}
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	// The cache is optional at runtime; reports fall back to the store.
	if err := redisClient.Ping(ctx); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable; serving statistics uncached until it recovers")
	}
	statsCache := red.NewStatsCache(redisClient, logger)
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- i18n ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		logger.Fatal().Err(err).Str("language", cfg.Bot.Language).Msg("translations")
	}

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	msgRepo := pg.NewPostgresMessageRepo(pool)

	// ---- Text generation ----
	summarizer, err := aiAdapters.NewSummarizer(ctx, cfg.AI, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("ai provider")
	}

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, logger)
	ingestUC := usecase.NewIngestUseCase(userRepo, msgRepo, statsCache, logger, cfg.Runtime.Dev)
	statsUC := usecase.NewStatsUseCase(msgRepo, statsCache, tr, usecase.StatsOptions{
		CacheTTL: cfg.Stats.CacheTTL(),
		TopLimit: cfg.Stats.TopLimit,
		Location: loc,
	}, logger)
	analyzeUC := usecase.NewAnalyzeUseCase(msgRepo, summarizer, tr, cfg.Stats.AnalyzeLimit, logger)

	// ---- Facade ----
	facade := application.NewBotFacade(userUC, statsUC, analyzeUC, ingestUC, tr)

	// ---- Telegram ----
	updates := worker.NewPool(cfg.Bot.Workers, logger)
	updates.Start(ctx)
	defer updates.Stop()

	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, rateLimiter, updates, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	if mode := strings.ToLower(cfg.Bot.Mode); mode != "" && mode != "polling" {
		logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- HTTP: probes, metrics, stats API ----
	srv := api.NewServer(statsUC, map[string]api.Pinger{"postgres": pool, "redis": redisClient}, logger)
	go func() {
		if err := srv.Start(cfg.Admin.Port); err != nil {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Scheduled jobs ----
	sched, err := scheduler.New(cfg.Scheduler, loc, statsCache, scheduler.PgxPoolStats(pool), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("scheduler")
	}
	sched.Start(ctx)

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	botAdapter.StopPolling()
	sched.Stop()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	cancel()
}
