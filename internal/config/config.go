package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/user/filmlog/internal/utils"
)

// Config 应用配置
type Config struct {
	Env               string        `validate:"oneof=development production test"`
	Port              string        `validate:"required,numeric"`
	FeedURL           string        `validate:"omitempty,url"`
	FeedMaxItems      int           `validate:"min=1,max=1000"`
	FeedCacheTTL      time.Duration `validate:"min=0"`
	ArchivePath       string
	ReferenceTZ       string        `validate:"required"`
	PosterConcurrency int           `validate:"min=1,max=64"`
	PosterTimeout     time.Duration `validate:"min=0"`
	PosterRPS         float64       `validate:"min=0"`
	MergePolicy       string        `validate:"oneof=field score"`
	DefaultLimit      int           `validate:"min=1,max=5000"`
	RefreshInterval   time.Duration `validate:"min=0"`
	UserAgent         string        `validate:"required"`
}

// Load 加载配置
func Load() *Config {
	return &Config{
		Env:               getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "5005"),
		FeedURL:           getEnv("FEED_URL", ""),
		FeedMaxItems:      getInt("FEED_MAX_ITEMS", 200),
		FeedCacheTTL:      getDuration("FEED_CACHE_TTL", 5*time.Minute),
		ArchivePath:       getEnv("ARCHIVE_PATH", "data/letterboxd-diary.csv"),
		ReferenceTZ:       getEnv("REFERENCE_TZ", "America/New_York"),
		PosterConcurrency: getInt("POSTER_CONCURRENCY", 8),
		PosterTimeout:     getDuration("POSTER_TIMEOUT", 8*time.Second),
		PosterRPS:         getFloat("POSTER_RPS", 0),
		MergePolicy:       getEnv("MERGE_POLICY", "field"),
		DefaultLimit:      getInt("DEFAULT_LIMIT", 500),
		RefreshInterval:   getDuration("REFRESH_INTERVAL", time.Hour),
		UserAgent:         getEnv("USER_AGENT", utils.DefaultUserAgent),
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	if _, err := time.LoadLocation(c.ReferenceTZ); err != nil {
		return fmt.Errorf("无效的时区 %q: %w", c.ReferenceTZ, err)
	}
	return nil
}

// Location 参考时区，无效时回退到 UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReferenceTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// getDuration 支持 "5m" 形式，也支持纯数字秒数
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
