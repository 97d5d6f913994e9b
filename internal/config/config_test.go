package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "BASE_URL", "LOG_LEVEL", "ALLOWED_ORIGINS", "REDIS_ADDR", "REDIS_DB",
		"HISTORIAN_QUEUE_NAME", "HISTORIAN_BATCH_SIZE", "HISTORIAN_FLUSH_MS",
		"ARCHIVE_DIALECT", "ARCHIVE_SQLITE_PATH", "DATABASE_URL", "PG_HOST", "PG_PORT",
		"PG_DATABASE", "POSTGRES_USER", "POSTGRES_PASSWORD", "GEMINI_API_KEY", "API_KEY", "GEMINI_MODEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8080/", cfg.BaseURL)
	assert.Equal(t, "", cfg.RedisAddr)
	assert.Equal(t, DefaultQueueName, cfg.QueueName)
	assert.Equal(t, 20, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.FlushDelay)
	assert.Equal(t, "sqlite", cfg.ArchiveDialect)
	assert.Equal(t, "", cfg.PostgresDSN)
	assert.Equal(t, "", cfg.GeminiAPIKey)
	assert.Equal(t, []string{"https://*", "http://*"}, cfg.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("HISTORIAN_BATCH_SIZE", "not-a-number")
	t.Setenv("HISTORIAN_FLUSH_MS", "50")
	t.Setenv("ARCHIVE_DIALECT", "Postgres")
	t.Setenv("PG_HOST", "db")
	t.Setenv("POSTGRES_USER", "trix")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("PG_DATABASE", "scores")
	t.Setenv("API_KEY", "fallback-key")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg := Load()
	assert.Equal(t, "http://localhost:9000/", cfg.BaseURL)
	assert.Equal(t, 20, cfg.BatchSize)
	assert.Equal(t, 50*time.Millisecond, cfg.FlushDelay)
	assert.Equal(t, "postgres", cfg.ArchiveDialect)
	assert.Equal(t, "postgres://trix:secret@db:5432/scores", cfg.PostgresDSN)
	assert.Equal(t, "fallback-key", cfg.GeminiAPIKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)

	t.Setenv("DATABASE_URL", "postgres://direct")
	assert.Equal(t, "postgres://direct", Load().PostgresDSN)
}
