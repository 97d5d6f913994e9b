// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is read once from the environment at startup. A .env file is
// loaded beforehand by godotenv/autoload in each binary.
type Config struct {
	Port     string
	BaseURL  string
	LogLevel string

	AllowedOrigins []string

	// RedisAddr empty disables the round history queue.
	RedisAddr  string
	RedisDB    int
	QueueName  string
	BatchSize  int
	FlushDelay time.Duration

	ArchiveDialect string // "sqlite" or "postgres"
	SQLitePath     string
	PostgresDSN    string

	GeminiAPIKey string
	GeminiModel  string
}

// DefaultQueueName is the Redis list that carries round records to the historian.
const DefaultQueueName = "trix_rounds"

// Load reads every setting, applying defaults for anything unset.
func Load() Config {
	port := getEnv("PORT", "8080")
	return Config{
		Port:           port,
		BaseURL:        getEnv("BASE_URL", fmt.Sprintf("http://localhost:%s/", port)),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "https://*,http://*")),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		QueueName:      getEnv("HISTORIAN_QUEUE_NAME", DefaultQueueName),
		BatchSize:      getEnvInt("HISTORIAN_BATCH_SIZE", 20),
		FlushDelay:     time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
		ArchiveDialect: strings.ToLower(getEnv("ARCHIVE_DIALECT", "sqlite")),
		SQLitePath:     getEnv("ARCHIVE_SQLITE_PATH", "tmp/trix_rounds.sqlite"),
		PostgresDSN:    postgresDSN(),
		GeminiAPIKey:   getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
	}
}

// postgresDSN prefers DATABASE_URL and otherwise assembles one from the
// individual POSTGRES_* / PG_* variables. It returns "" when nothing is set.
func postgresDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	host := os.Getenv("PG_HOST")
	if host == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		host,
		getEnv("PG_PORT", "5432"),
		os.Getenv("PG_DATABASE"),
	)
}

// getEnv is a helper to read an environment variable or return a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt is a helper to parse an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
