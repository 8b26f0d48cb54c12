// Package config содержит логику чтения конфигурации сервиса учёта баллов.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	defaultRunAddress      = "localhost:8080"
	defaultStreakResetCron = "5 0 * * *"
	defaultKidCacheSize    = 256
	defaultKidCacheTTL     = 30 * time.Second
)

// Config содержит параметры конфигурации сервиса.
type Config struct {
	RunAddress      string        `env:"RUN_ADDRESS"`
	DatabaseURI     string        `env:"DATABASE_URI"`
	AuthSecret      string        `env:"AUTH_SECRET"`
	StreakResetCron string        `env:"STREAK_RESET_CRON"`
	KidCacheSize    int           `env:"KID_CACHE_SIZE"`
	KidCacheTTL     time.Duration `env:"KID_CACHE_TTL"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Значения из окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	envCfg := Config{}
	if err := env.Parse(&envCfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.AuthSecret, "s", "", "secret key for signing session cookies")
	flag.StringVar(&cfg.StreakResetCron, "c", defaultStreakResetCron, "cron schedule of the streak reset job")
	flag.IntVar(&cfg.KidCacheSize, "k", defaultKidCacheSize, "kid read cache size")
	flag.DurationVar(&cfg.KidCacheTTL, "t", defaultKidCacheTTL, "kid read cache TTL")

	flag.Parse()

	if envCfg.RunAddress != "" {
		cfg.RunAddress = envCfg.RunAddress
	}
	if envCfg.DatabaseURI != "" {
		cfg.DatabaseURI = envCfg.DatabaseURI
	}
	if envCfg.AuthSecret != "" {
		cfg.AuthSecret = envCfg.AuthSecret
	}
	if envCfg.StreakResetCron != "" {
		cfg.StreakResetCron = envCfg.StreakResetCron
	}
	if envCfg.KidCacheSize != 0 {
		cfg.KidCacheSize = envCfg.KidCacheSize
	}
	if envCfg.KidCacheTTL != 0 {
		cfg.KidCacheTTL = envCfg.KidCacheTTL
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.StreakResetCron == "" {
		cfg.StreakResetCron = defaultStreakResetCron
	}
	if cfg.KidCacheSize <= 0 {
		return nil, fmt.Errorf("kid cache size must be positive, got %d", cfg.KidCacheSize)
	}

	return cfg, nil
}
