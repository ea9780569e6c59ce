// Package config loads server settings from the environment.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the complete server configuration
type Config struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT, default=8080"`
	BaseURL  string `env:"BASE_URL, default=http://localhost:8080"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// StorageType selects the metadata backend: memory, redis or postgres
	StorageType string `env:"STORAGE_TYPE, default=memory"`
	// BlobType selects the audio backend: memory or minio
	BlobType string `env:"BLOB_TYPE, default=memory"`

	Redis    RedisConfig
	Postgres PostgresConfig
	Minio    MinioConfig
	Auth     AuthConfig
	HTTP     HTTPConfig
}

// RedisConfig holds Redis settings
type RedisConfig struct {
	URL      string `env:"REDIS_URL, default=redis://localhost:6379"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

// PostgresConfig holds PostgreSQL settings
type PostgresConfig struct {
	DSN          string `env:"DATABASE_URL"`
	MaxOpenConns int    `env:"DATABASE_MAX_OPEN_CONNS, default=10"`
}

// MinioConfig holds object storage settings
type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT, default=localhost:9000"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET, default=vzee-clips"`
	UseSSL    bool   `env:"MINIO_USE_SSL, default=false"`
}

// AuthConfig holds sign-in settings
type AuthConfig struct {
	SessionDuration time.Duration `env:"SESSION_DURATION, default=24h"`
	DevLogin        bool          `env:"DEV_LOGIN, default=false"`
	IDTokenSecret   string        `env:"ID_TOKEN_SECRET"`
	IDTokenIssuer   string        `env:"ID_TOKEN_ISSUER, default=vzee"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
}

// HTTPConfig holds HTTP surface settings
type HTTPConfig struct {
	CORSOrigins    []string      `env:"CORS_ORIGINS, default=*"`
	RateLimitRPS   float64       `env:"RATE_LIMIT_RPS, default=1"`
	RateLimitBurst int           `env:"RATE_LIMIT_BURST, default=10"`
	WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT, default=60s"`
}

// Load reads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from the given lookuper (for testing)
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field requirements
func (c *Config) Validate() error {
	switch c.StorageType {
	case "memory", "redis":
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("DATABASE_URL required when STORAGE_TYPE=postgres")
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be memory, redis or postgres", c.StorageType)
	}

	switch c.BlobType {
	case "memory":
	case "minio":
		if c.Minio.AccessKey == "" || c.Minio.SecretKey == "" {
			return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY required when BLOB_TYPE=minio")
		}
	default:
		return fmt.Errorf("invalid BLOB_TYPE %q: must be memory or minio", c.BlobType)
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// GoogleRedirectURL is the OAuth callback registered with Google
func (c *Config) GoogleRedirectURL() string {
	return c.BaseURL + "/auth/google/callback"
}
