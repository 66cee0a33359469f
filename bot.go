package main

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Bot struct {
	tgBot    TelegramClient
	provider FactProvider
	limiter  *RateLimiter
	sessions *sessionStore
	journal  *RequestJournal
	budget   *rate.Limiter
	config   *Config
	clock    Clock
	logger   *zap.Logger
}

func NewBot(cfg *Config, provider FactProvider, journal *RequestJournal, clock Clock, tgClient TelegramClient, logger *zap.Logger) *Bot {
	return &Bot{
		tgBot:    tgClient,
		provider: provider,
		limiter:  NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow, clock),
		sessions: newSessionStore(clock),
		journal:  journal,
		budget:   rate.NewLimiter(rate.Limit(cfg.LLMBudgetRPS), cfg.LLMBudgetBurst),
		config:   cfg,
		clock:    clock,
		logger:   logger,
	}
}

func initTelegramBot(token string, handleUpdate func(ctx context.Context, tgBot *bot.Bot, update *models.Update)) (TelegramClient, error) {
	opts := []bot.Option{
		bot.WithDefaultHandler(handleUpdate),
	}

	tgBot, err := bot.New(token, opts...)
	if err != nil {
		return nil, err
	}

	return tgBot, nil
}

// Start runs the bot in the configured transport mode and blocks until ctx is
// cancelled or the transport fails.
func (b *Bot) Start(ctx context.Context) error {
	if b.config.Mode == ModeWebhook {
		return b.startWebhook(ctx)
	}
	return b.startPolling(ctx)
}

// startPolling clears any previously registered webhook and long-polls for
// updates. Telegram reports success when no webhook was set, so the clearing
// step is idempotent; an actual API failure here is logged but does not stop
// polling.
func (b *Bot) startPolling(ctx context.Context) error {
	if _, err := b.tgBot.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
		b.logger.Warn("webhook_clear_failed", zap.Error(err))
	}

	b.logger.Info("bot_started", zap.String("mode", string(ModePolling)))
	b.tgBot.Start(ctx)
	return nil
}

// sendMessage delivers a reply to a chat. Delivery failure is logged and
// swallowed so an unreachable Telegram never cascades into a second
// user-visible error.
func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}

	if _, err := b.tgBot.SendMessage(ctx, params); err != nil {
		b.logger.Error("send_failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// sendPlaceholder posts the interim "searching" message and returns its id, or
// zero when sending failed.
func (b *Bot) sendPlaceholder(ctx context.Context, chatID int64) int {
	msg, err := b.tgBot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   msgSearching,
	})
	if err != nil || msg == nil {
		b.logger.Warn("placeholder_send_failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return 0
	}
	return msg.ID
}

// deletePlaceholder removes a previously sent placeholder. Deletion is
// cosmetic; failure is logged and swallowed.
func (b *Bot) deletePlaceholder(ctx context.Context, chatID int64, messageID int) {
	if messageID == 0 {
		return
	}
	_, err := b.tgBot.DeleteMessage(ctx, &bot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err != nil {
		b.logger.Warn("placeholder_delete_failed",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err))
	}
}

// sendStats replies with totals from the request journal.
func (b *Bot) sendStats(ctx context.Context, chatID int64) {
	if b.journal == nil {
		b.sendMessage(ctx, chatID, msgStatsUnavailable)
		return
	}

	stats, err := b.journal.Stats()
	if err != nil {
		b.logger.Error("stats_query_failed", zap.Error(err))
		b.sendMessage(ctx, chatID, msgStatsUnavailable)
		return
	}

	b.sendMessage(ctx, chatID, fmt.Sprintf(
		"📊 Статистика бота:\n\n"+
			"- Всего запросов: %d\n"+
			"- Фактов отправлено: %d\n"+
			"- Пользователей: %d",
		stats.TotalRequests,
		stats.Delivered,
		stats.DistinctUsers,
	))
}

func (b *Bot) recordRequest(chatID, userID int64, latitude, longitude float64, outcome string, durationMs int64) {
	err := b.journal.Record(&FactRequest{
		ChatID:     chatID,
		UserID:     userID,
		Latitude:   latitude,
		Longitude:  longitude,
		Outcome:    outcome,
		DurationMs: durationMs,
	})
	if err != nil {
		b.logger.Warn("journal_write_failed", zap.Error(err))
	}
}
