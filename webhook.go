package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// startWebhook registers the webhook URL with Telegram and serves inbound
// updates over HTTP until ctx is cancelled. Registration failure is fatal.
func (b *Bot) startWebhook(ctx context.Context) error {
	url := strings.TrimRight(b.config.WebhookBaseURL, "/") + "/webhook"
	if _, err := b.tgBot.SetWebhook(ctx, &bot.SetWebhookParams{URL: url}); err != nil {
		return fmt.Errorf("failed to register webhook %s: %w", url, err)
	}

	router := chi.NewRouter()
	router.Post("/webhook", b.webhookHandler)
	router.Get("/healthz", b.healthHandler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", b.config.ListenPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	b.logger.Info("bot_started",
		zap.String("mode", string(ModeWebhook)),
		zap.String("webhook_url", url),
		zap.Int("port", b.config.ListenPort))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// webhookHandler receives one update per request. The receipt is acknowledged
// before processing: Telegram retries on a missing ack, so local pipeline
// failures must not delay or fail the response. 400 marks bodies the bot can
// never act on; anything recognized or ignorable gets 200.
func (b *Bot) webhookHandler(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("webhook_panic", zap.Any("panic", rec))
			w.WriteHeader(http.StatusInternalServerError)
		}
	}()

	var update models.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		b.logger.Warn("webhook_bad_body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	message := update.Message
	if message == nil {
		message = update.EditedMessage
	}

	if message == nil {
		// Not a message update: nothing for this bot, but a valid shape.
		w.WriteHeader(http.StatusOK)
		return
	}

	if message.Chat.ID == 0 {
		b.logger.Warn("webhook_missing_fields", zap.Int64("update_id", update.ID))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)

	// Detached from the request context: the ack above already closed the
	// delivery, processing continues on its own. The goroutine carries its
	// own recover; a panic here is outside the handler's and must not take
	// the process down.
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				b.logger.Error("update_panic",
					zap.Int64("update_id", update.ID),
					zap.Any("panic", rec))
			}
		}()
		b.processUpdate(context.Background(), &update)
	}()
}

func (b *Bot) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"mode":   string(b.config.Mode),
	})
}
