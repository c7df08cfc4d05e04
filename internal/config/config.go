package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Renderer names accepted by RENDERER.
const (
	RendererGrid  = "grid"
	RendererScene = "scene"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL" envDefault:"info"`
	LogOutput   string `env:"LOG_OUTPUT" envDefault:"stdout"`

	// GameFile is a JSON or YAML game document. Empty means the embedded sample game.
	GameFile string `env:"GAME_FILE"`
	Renderer string `env:"RENDERER" envDefault:"grid"`

	// Redis session snapshots are used when RedisURL is set.
	RedisURL   string        `env:"REDIS_URL"`
	SessionID  string        `env:"SESSION_ID"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	SQLitePath string `env:"SQLITE_PATH"`

	LogLevel slog.Level
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)
	cfg.Renderer = strings.ToLower(cfg.Renderer)
	if cfg.Renderer != RendererGrid && cfg.Renderer != RendererScene {
		return nil, fmt.Errorf("unknown renderer %q", cfg.Renderer)
	}
	if cfg.SessionTTL < 0 {
		return nil, fmt.Errorf("negative session ttl %s", cfg.SessionTTL)
	}
	return &cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
