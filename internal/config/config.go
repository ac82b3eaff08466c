// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string `yaml:"token"`
	Mode     string `yaml:"mode"` // polling | webhook (future)
	Username string `yaml:"username"`
	Workers  int    `yaml:"workers"` // polling workers
	Language string `yaml:"language"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL         string        `yaml:"url"`
	MaxConns    int32         `yaml:"max_conns"`
	WaitRetries int           `yaml:"wait_retries"`
	WaitDelay   time.Duration `yaml:"wait_delay"`
	AutoMigrate bool          `yaml:"auto_migrate"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AIConfig struct {
	GeminiKey       string `yaml:"gemini_key"`
	GeminiURL       string `yaml:"gemini_url"`
	GeminiModel     string `yaml:"gemini_model"`
	OpenAIKey       string `yaml:"openai_key"`
	OpenAIBaseURL   string `yaml:"openai_base_url"`
	OpenAIModel     string `yaml:"openai_model"`
	MaxPromptTokens int    `yaml:"max_prompt_tokens"`
	ConcurrentLimit int    `yaml:"concurrent_limit"` // max concurrent AI calls
}

type StatsConfig struct {
	CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`
	TopLimit        int    `yaml:"top_limit"`
	AnalyzeLimit    int    `yaml:"analyze_limit"`
	Timezone        string `yaml:"timezone"`
}

type SchedulerConfig struct {
	CacheFlushCron string `yaml:"cache_flush_cron"`
	PoolStatsCron  string `yaml:"pool_stats_cron"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	AI        AIConfig        `yaml:"ai"`
	Stats     StatsConfig     `yaml:"stats"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-"`
}

// CacheTTL is the uniform expiry applied to every statistics cache write.
func (c StatsConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// Location resolves the timezone used for the "day" range.
func (c StatsConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// LoadConfig reads the YAML file at path (optional when every required value
// comes from the environment), applies .env and environment overrides and defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// environment-only deployment
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if _, err := cfg.Stats.Location(); err != nil {
		return nil, fmt.Errorf("stats.timezone: %w", err)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	setStr := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}
	// Some editors save .env with a BOM glued to the first key.
	setStr(&cfg.Bot.Token, "BOT_TOKEN", "\ufeffBOT_TOKEN")
	setStr(&cfg.Database.URL, "DATABASE_URL")
	setStr(&cfg.Redis.URL, "REDIS_URL")
	setStr(&cfg.AI.GeminiKey, "GEMINI_API_KEY")
	setStr(&cfg.AI.OpenAIKey, "OPENAI_API_KEY")
	setStr(&cfg.Stats.Timezone, "TIMEZONE")
	setStr(&cfg.Log.Level, "LOG_LEVEL")

	if v := strings.TrimSpace(os.Getenv("CACHE_TTL_MINUTES")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CACHE_TTL_MINUTES: %w", err)
		}
		cfg.Stats.CacheTTLMinutes = n
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Language == "" {
		cfg.Bot.Language = "ru"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8080
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Database.WaitRetries <= 0 {
		cfg.Database.WaitRetries = 10
	}
	if cfg.Database.WaitDelay <= 0 {
		cfg.Database.WaitDelay = 2000 * time.Millisecond
	}
	if cfg.Stats.CacheTTLMinutes <= 0 {
		cfg.Stats.CacheTTLMinutes = 20
	}
	if cfg.Stats.TopLimit <= 0 {
		cfg.Stats.TopLimit = 10
	}
	if cfg.Stats.AnalyzeLimit <= 0 {
		cfg.Stats.AnalyzeLimit = 100
	}
	if cfg.AI.GeminiModel == "" {
		cfg.AI.GeminiModel = "gemini-2.5-flash"
	}
	if cfg.AI.OpenAIModel == "" {
		cfg.AI.OpenAIModel = "gpt-4o-mini"
	}
	if cfg.AI.MaxPromptTokens <= 0 {
		cfg.AI.MaxPromptTokens = 8000
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 4
	}
	if cfg.Scheduler.CacheFlushCron == "" {
		cfg.Scheduler.CacheFlushCron = "0 0 * * *"
	}
	if cfg.Scheduler.PoolStatsCron == "" {
		cfg.Scheduler.PoolStatsCron = "@every 30s"
	}
}
