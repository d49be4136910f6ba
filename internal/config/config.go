package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the app.
type Config struct {
	App     AppConfig
	Storage StorageConfig
	Logger  LoggerConfig
}

// AppConfig controls application level behavior.
type AppConfig struct {
	Name string `env:"APP_NAME" envDefault:"ticket-check"`
	Env  string `env:"APP_ENV" envDefault:"development"`
}

// StorageConfig selects and parameterizes the key-value backend.
type StorageConfig struct {
	// Backend is one of file, sqlite, redis, memory.
	Backend    string `env:"STORAGE_BACKEND" envDefault:"file"`
	DataDir    string `env:"STORAGE_DATA_DIR" envDefault:".ticket-check"`
	SQLitePath string `env:"STORAGE_SQLITE_PATH" envDefault:".ticket-check/ticket-check.db"`
	Redis      RedisConfig
}

// RedisConfig holds connection values for the redis backend.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load reads configuration from the environment, honoring a local .env file
// when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.Storage.Backend {
	case "file", "sqlite", "redis", "memory":
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q: want file, sqlite, redis or memory", cfg.Storage.Backend)
	}

	return &cfg, nil
}
