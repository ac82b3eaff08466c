package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"telegram-chat-stats/internal/config"
	"telegram-chat-stats/internal/domain/model"
	pg "telegram-chat-stats/internal/infra/db/postgres"
	"telegram-chat-stats/internal/infra/i18n"
	"telegram-chat-stats/internal/infra/logging"
	red "telegram-chat-stats/internal/infra/redis"
	"telegram-chat-stats/internal/usecase"
)

var demoUsers = []struct {
	ID        int64
	Username  string
	FirstName string
	Weight    int
}{
	{1001, "alice", "Alice", 6},
	{1002, "bob", "Bob", 3},
	{1003, "", "Carol", 2},
	{1004, "dave", "Dave", 1},
}

var demoTexts = []string{
	"good morning",
	"has anyone seen the release notes?",
	"lunch at 1?",
	"the build is green again",
	"I'll take a look after the meeting",
	"ok",
}

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	chatID := flag.Int64("chat", -1001, "chat id to seed")
	count := flag.Int("messages", 200, "number of messages to record")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	if err := pg.WaitForDB(ctx, pool, cfg.Database.WaitRetries, cfg.Database.WaitDelay, logger); err != nil {
		logger.Fatal().Err(err).Msg("postgres unreachable")
	}
	if err := pg.RunMigrations(cfg.Database.URL, logger); err != nil {
		logger.Fatal().Err(err).Msg("migrations")
	}

	redisClient, err := red.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	cache := red.NewStatsCache(redisClient, logger)

	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		logger.Fatal().Err(err).Msg("translations")
	}

	users := pg.NewPostgresUserRepo(pool)
	messages := pg.NewPostgresMessageRepo(pool)
	ingest := usecase.NewIngestUseCase(users, messages, cache, logger, true)
	opts, err := statsOptions(cfg.Stats)
	if err != nil {
		logger.Fatal().Err(err).Msg("timezone")
	}
	stats := usecase.NewStatsUseCase(messages, cache, tr, opts, logger)

	// Weighted pick so the leaderboard has a clear order.
	var bag []int
	for i, u := range demoUsers {
		for j := 0; j < u.Weight; j++ {
			bag = append(bag, i)
		}
	}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < *count; i++ {
		u := demoUsers[bag[rnd.Intn(len(bag))]]
		author, err := model.NewUser(u.ID, u.Username, u.FirstName, "")
		if err != nil {
			logger.Fatal().Err(err).Msg("demo user")
		}
		ingest.Record(ctx, author, *chatID, demoTexts[rnd.Intn(len(demoTexts))])
	}

	rep, err := stats.LeaderboardReport(ctx, *chatID, model.RangeAll)
	if err != nil {
		logger.Fatal().Err(err).Msg("leaderboard")
	}
	fmt.Printf("seeded %d messages into chat %d\n\n%s\n", *count, *chatID, rep.Text)
}

// statsOptions mirrors the options cmd/app passes, so seeded reports use the same day boundary.
func statsOptions(cfg config.StatsConfig) (usecase.StatsOptions, error) {
	loc, err := cfg.Location()
	if err != nil {
		return usecase.StatsOptions{}, err
	}
	return usecase.StatsOptions{
		CacheTTL: cfg.CacheTTL(),
		TopLimit: cfg.TopLimit,
		Location: loc,
	}, nil
}
