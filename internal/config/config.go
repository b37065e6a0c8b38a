package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	HTTP      HTTPConfig
	Log       LogConfig
	Visitor   VisitorConfig
	Store     StoreConfig
	Remote    RemoteConfig
	Directory DirectoryConfig
}

type HTTPConfig struct {
	Port              string        `env:"PORT" env-default:"8080"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"120s"`
	// Default to secure cookies; disable only for local development.
	CookieSecure bool `env:"COOKIE_SECURE" env-default:"true"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

type VisitorConfig struct {
	Secret   string        `env:"VISITOR_SECRET" env-required:"true"`
	TokenTTL time.Duration `env:"VISITOR_TOKEN_TTL" env-default:"8760h"`
}

type StoreConfig struct {
	Backend       string `env:"STORE_BACKEND" env-default:"sqlite"`
	DatabasePath  string `env:"DATABASE_PATH" env-default:"user-directory.db"`
	RedisAddr     string `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`
}

type RemoteConfig struct {
	BaseURL string        `env:"USERS_API_URL" env-default:"https://jsonplaceholder.typicode.com"`
	Timeout time.Duration `env:"REMOTE_TIMEOUT" env-default:"10s"`
}

type DirectoryConfig struct {
	PersistFavorites bool          `env:"PERSIST_FAVORITES" env-default:"false"`
	ViewTTL          time.Duration `env:"LISTING_VIEW_TTL" env-default:"30m"`
	SubmitRate       float64       `env:"SUBMIT_RATE" env-default:"1"`
	SubmitBurst      float64       `env:"SUBMIT_BURST" env-default:"5"`
}

// Load reads the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c Config) Validate() error {
	if len(c.Visitor.Secret) < 32 {
		return fmt.Errorf("VISITOR_SECRET must be at least 32 characters for HMAC-SHA256 security")
	}
	switch c.Store.Backend {
	case BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendSQLite, BackendRedis, c.Store.Backend)
	}
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("USERS_API_URL is required")
	}
	if c.Directory.ViewTTL <= 0 {
		return fmt.Errorf("LISTING_VIEW_TTL must be positive")
	}
	if c.Directory.SubmitRate < 0 || c.Directory.SubmitBurst < 1 {
		return fmt.Errorf("SUBMIT_RATE must be >= 0 and SUBMIT_BURST >= 1")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps LOG_LEVEL to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(l.Level))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", l.Level, err)
	}
	return level, nil
}
