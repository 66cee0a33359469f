package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Optional .env file; absence is fine.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogPath)
	defer func() { _ = logger.Sync() }()

	logger.Info("app_startup",
		zap.String("mode", string(cfg.Mode)),
		zap.String("provider", cfg.Provider))

	var journal *RequestJournal
	if cfg.StatsDBPath != "" {
		journal, err = openJournal(cfg.StatsDBPath)
		if err != nil {
			logger.Fatal("journal_open_failed", zap.Error(err))
		}
	}

	b := NewBot(cfg, newFactProvider(cfg), journal, RealClock{}, nil, logger)

	tgClient, err := initTelegramBot(cfg.BotToken, b.handleUpdate)
	if err != nil {
		logger.Fatal("telegram_init_failed", zap.Error(err))
	}
	b.tgBot = tgClient

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The limiter never schedules its own cleanup; sweep expired windows here.
	go func() {
		ticker := time.NewTicker(cfg.RateLimitWindow)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				b.limiter.Cleanup()
			}
		}
	}()

	if err := b.Start(ctx); err != nil {
		logger.Error("bot_stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	logger.Info("shutdown_complete")
}
