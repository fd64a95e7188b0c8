package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr   string `env:"LISTEN_ADDR"`
	Port         string `env:"PORT,default=8080"`
	DatabasePath string `env:"DATABASE_PATH,default=habitlog.db"`
	GinMode      string `env:"GIN_MODE,default=release"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	// RedisURL 为空时数据源缓存退回进程内存
	RedisURL         string        `env:"REDIS_URL"`
	ProviderCacheTTL time.Duration `env:"PROVIDER_CACHE_TTL,default=1h"`
	ProviderTimeout  time.Duration `env:"PROVIDER_TIMEOUT,default=10s"`

	GitHubToken     string  `env:"GITHUB_TOKEN"`
	GitHubUsername  string  `env:"GITHUB_USERNAME"`
	GitHubAPIURL    string  `env:"GITHUB_API_URL,default=https://api.github.com"`
	GitHubRateLimit float64 `env:"GITHUB_RATE_LIMIT,default=5"`

	// SyncSchedule 是 cron 表达式，为空时不启动定时同步
	SyncSchedule       string `env:"SYNC_SCHEDULE"`
	StreakLookbackDays int    `env:"STREAK_LOOKBACK_DAYS,default=365"`
}

// Load 读取 .env（可选）与环境变量，并为缺失项提供默认值。
func Load(envFiles ...string) (AppConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return AppConfig{}, fmt.Errorf("load env file: %w", err)
	}

	var cfg AppConfig
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return AppConfig{}, fmt.Errorf("decode env: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func (c *AppConfig) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = "8080"
	}
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}
	c.DatabasePath = strings.TrimSpace(c.DatabasePath)
	if c.DatabasePath == "" {
		c.DatabasePath = "habitlog.db"
	}
	c.GinMode = strings.TrimSpace(c.GinMode)
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	c.GitHubAPIURL = strings.TrimRight(strings.TrimSpace(c.GitHubAPIURL), "/")
	c.GitHubUsername = strings.TrimSpace(c.GitHubUsername)
	c.GitHubToken = strings.TrimSpace(c.GitHubToken)
	c.SyncSchedule = strings.TrimSpace(c.SyncSchedule)
}

// Validate 检查数值型配置
func (c AppConfig) Validate() error {
	if c.ProviderCacheTTL < 0 {
		return fmt.Errorf("PROVIDER_CACHE_TTL must not be negative")
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive")
	}
	if c.GitHubRateLimit <= 0 {
		return fmt.Errorf("GITHUB_RATE_LIMIT must be positive")
	}
	if c.StreakLookbackDays <= 0 {
		return fmt.Errorf("STREAK_LOOKBACK_DAYS must be positive")
	}
	return nil
}

// GitHubEnabled 表示 GitHub 数据源的凭据是否齐全
func (c AppConfig) GitHubEnabled() bool {
	return c.GitHubToken != "" && c.GitHubUsername != ""
}
