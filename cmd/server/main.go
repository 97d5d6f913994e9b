// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/trix/internal/cache"
	"github.com/jason-s-yu/trix/internal/config"
	"github.com/jason-s-yu/trix/internal/handlers"
	"github.com/jason-s-yu/trix/internal/referee"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ref := referee.New(cfg.GeminiAPIKey, logger)
	ref.Model = cfg.GeminiModel
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set; the referee will only return its missing-key reply")
	}

	srv := handlers.NewScoreServer(cfg.BaseURL, ref, nil, logger)
	srv.AllowedOrigins = cfg.AllowedOrigins

	// the history queue is optional; scoring works without it
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.WithError(err).Warn("round history queue disabled")
		} else {
			defer rdb.Close()
			srv.Publisher = cache.NewPublisher(rdb, cfg.QueueName)
			go srv.RunPublisher(ctx)
			logger.Infof("publishing round records to %s/%s", cfg.RedisAddr, cfg.QueueName)
		}
	}

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
	}()

	logger.Infof("Running on %s", httpSrv.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
	logger.Info("server stopped")
}
