package config

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, env map[string]string) (*Config, error) {
	t.Helper()
	return LoadWith(context.Background(), envconfig.MapLookuper(env))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(t, map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, "memory", cfg.BlobType)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionDuration)
	assert.False(t, cfg.Auth.DevLogin)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, "vzee-clips", cfg.Minio.Bucket)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"PORT":             "9000",
		"BASE_URL":         "https://vzee.fun/",
		"LOG_LEVEL":        "debug",
		"STORAGE_TYPE":     "redis",
		"REDIS_URL":        "redis://cache:6379",
		"DEV_LOGIN":        "true",
		"CORS_ORIGINS":     "https://vzee.fun,https://www.vzee.fun",
		"SESSION_DURATION": "2h",
	})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "https://vzee.fun", cfg.BaseURL)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "redis://cache:6379", cfg.Redis.URL)
	assert.True(t, cfg.Auth.DevLogin)
	assert.Equal(t, []string{"https://vzee.fun", "https://www.vzee.fun"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionDuration)
	assert.Equal(t, "https://vzee.fun/auth/google/callback", cfg.GoogleRedirectURL())
}

func TestLoadRejectsUnknownStorage(t *testing.T) {
	_, err := load(t, map[string]string{"STORAGE_TYPE": "mongo"})
	assert.ErrorContains(t, err, "invalid STORAGE_TYPE")
}

func TestLoadPostgresNeedsDSN(t *testing.T) {
	_, err := load(t, map[string]string{"STORAGE_TYPE": "postgres"})
	assert.ErrorContains(t, err, "DATABASE_URL")

	cfg, err := load(t, map[string]string{
		"STORAGE_TYPE": "postgres",
		"DATABASE_URL": "postgres://localhost/vzee",
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/vzee", cfg.Postgres.DSN)
}

func TestLoadMinioNeedsCredentials(t *testing.T) {
	_, err := load(t, map[string]string{"BLOB_TYPE": "minio"})
	assert.ErrorContains(t, err, "MINIO_ACCESS_KEY")
}

func TestSlogLevelFallsBackToInfo(t *testing.T) {
	cfg := &Config{LogLevel: "chatty"}
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}
