// cmd/historian/main.go runs the round historian: it drains the Redis round
// queue into the SQLite or Postgres archive. With -dump it prints one
// session's archived records as JSON lines and exits.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jason-s-yu/trix/internal/cache"
	"github.com/jason-s-yu/trix/internal/config"
	"github.com/jason-s-yu/trix/internal/database"
	"github.com/jason-s-yu/trix/internal/historian"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	dump := flag.String("dump", "", "print the archived records of this session id and exit")
	flag.Parse()

	cfg := config.Load()

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *dump != "" {
		dumpSession(ctx, logger, cfg, *dump)
		return
	}

	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb, err := cache.ConnectRedis(ctx, addr, cfg.RedisDB)
	if err != nil {
		logger.Fatalf("historian needs redis: %v", err)
	}
	defer rdb.Close()

	archive, err := database.OpenArchive(ctx, cfg.ArchiveDialect, cfg.SQLitePath, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("failed to open %s archive: %v", cfg.ArchiveDialect, err)
	}
	defer archive.Close()

	hs := historian.NewService(rdb, archive, cfg.QueueName, cfg.BatchSize, cfg.FlushDelay, logger)
	hs.Run(ctx)
	logger.Info("Historian shutdown complete.")
}

func dumpSession(ctx context.Context, logger *logrus.Logger, cfg config.Config, id string) {
	sessionID, err := uuid.Parse(id)
	if err != nil {
		logger.Fatalf("invalid session id %q: %v", id, err)
	}
	archive, err := database.OpenArchive(ctx, cfg.ArchiveDialect, cfg.SQLitePath, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("failed to open %s archive: %v", cfg.ArchiveDialect, err)
	}
	defer archive.Close()

	n, err := historian.Dump(ctx, archive, sessionID, os.Stdout)
	if err != nil {
		logger.Errorf("dump failed after %d records: %v", n, err)
		return
	}
	logger.Infof("dumped %d records for session %s", n, sessionID)
}
