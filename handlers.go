package main

import (
	"context"
	"fmt"
	"math"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// User-facing copy. Output language is fixed to Russian.
const (
	msgHelp = "Привет! Отправь мне геолокацию, и я расскажу интересный факт об этом месте.\n\n" +
		"📍 Нажми на скрепку и выбери «Геопозиция».\n" +
		"⏳ Не чаще одного запроса в 10 секунд."
	msgInvalidCoordinates = "❌ Получены некорректные координаты. Попробуйте отправить локацию ещё раз."
	msgRateLimited        = "⏳ Слишком частые запросы. Попробуйте через %d секунд."
	msgSearching          = "🔍 Ищу интересные факты об этом месте..."
	msgStatsUnavailable   = "Статистика сейчас недоступна."

	factHeader    = "✨ **Интересный факт:**\n\n"
	mapButtonText = "🗺️ Открыть на карте"
)

// handleUpdate is the default handler registered with the polling transport.
func (b *Bot) handleUpdate(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.processUpdate(ctx, update)
}

// processUpdate dispatches one inbound update, whichever transport delivered
// it. Unrecognized shapes are dropped silently.
func (b *Bot) processUpdate(ctx context.Context, update *models.Update) {
	var message *models.Message

	switch {
	case update.Message != nil:
		message = update.Message
	case update.EditedMessage != nil:
		// Live-location updates arrive as message edits. Only chats that
		// shared a live location this session are tracked; stale edits
		// (including after a restart wiped the session) are dropped.
		message = update.EditedMessage
		if message.Location == nil || !b.sessions.liveActive(message.Chat.ID) {
			return
		}
	default:
		return
	}

	if message.Location != nil {
		b.handleLocation(ctx, message)
		return
	}

	for _, entity := range message.Entities {
		if entity.Type == "bot_command" {
			// Entity bounds come from the wire and are not trusted; the
			// webhook accepts arbitrary bodies.
			end := entity.Offset + entity.Length
			if entity.Offset < 0 || entity.Length <= 0 || end > len(message.Text) {
				b.logger.Warn("entity_out_of_bounds",
					zap.Int64("chat_id", message.Chat.ID),
					zap.Int("offset", entity.Offset),
					zap.Int("length", entity.Length),
					zap.Int("text_length", len(message.Text)))
				continue
			}
			command := message.Text[entity.Offset:end]
			switch command {
			case "/start", "/help":
				b.sendMessage(ctx, message.Chat.ID, msgHelp)
				return
			case "/stats":
				b.sendStats(ctx, message.Chat.ID)
				return
			}
		}
	}
}

// handleLocation runs the location pipeline: validate coordinates, admit via
// the rate limiter, fetch the fact, deliver it with a map link. Terminal on
// the first success or the first reported failure; no retries.
func (b *Bot) handleLocation(ctx context.Context, message *models.Message) {
	chatID := message.Chat.ID
	location := message.Location

	if chatID == 0 || message.From == nil {
		// Not addressed to this flow; no reply.
		b.logger.Warn("location_dropped",
			zap.Int64("chat_id", chatID),
			zap.Bool("has_from", message.From != nil))
		return
	}

	userID := message.From.ID
	latitude := location.Latitude
	longitude := location.Longitude
	start := b.clock.Now()

	b.logger.Info("location_received",
		zap.Int64("chat_id", chatID),
		zap.Int64("user_id", userID),
		zap.Float64("latitude", latitude),
		zap.Float64("longitude", longitude))

	if location.LivePeriod > 0 {
		b.sessions.setLiveActive(chatID, true)
	}

	if !validCoordinates(latitude, longitude) {
		b.logger.Warn("location_invalid",
			zap.Int64("chat_id", chatID),
			zap.Int64("user_id", userID),
			zap.Float64("latitude", latitude),
			zap.Float64("longitude", longitude))
		b.sendMessage(ctx, chatID, msgInvalidCoordinates)
		b.recordRequest(chatID, userID, latitude, longitude, outcomeInvalid, b.clock.Now().Sub(start).Milliseconds())
		return
	}

	key := rateLimitKey(userID)
	if !b.limiter.IsAllowed(key) {
		seconds := int(math.Ceil(b.limiter.RemainingTime(key).Seconds()))
		b.logger.Info("rate_limited",
			zap.Int64("chat_id", chatID),
			zap.Int64("user_id", userID),
			zap.Int("retry_after_s", seconds))
		b.sendMessage(ctx, chatID, fmt.Sprintf(msgRateLimited, seconds))
		b.recordRequest(chatID, userID, latitude, longitude, outcomeRateLimited, b.clock.Now().Sub(start).Milliseconds())
		return
	}

	if !b.budget.Allow() {
		b.logger.Warn("llm_budget_exhausted",
			zap.Int64("chat_id", chatID),
			zap.Int64("user_id", userID))
		b.sendMessage(ctx, chatID, msgProviderRateLimited)
		b.recordRequest(chatID, userID, latitude, longitude, outcomeFailed, b.clock.Now().Sub(start).Milliseconds())
		return
	}

	placeholderID := b.sendPlaceholder(ctx, chatID)

	b.logger.Info("fact_search",
		zap.Int64("chat_id", chatID),
		zap.Int64("user_id", userID),
		zap.Float64("latitude", latitude),
		zap.Float64("longitude", longitude))

	factCtx, cancel := context.WithTimeout(ctx, b.config.LLMTimeout)
	defer cancel()

	fact, err := b.provider.FactForLocation(factCtx, latitude, longitude)
	if err != nil {
		b.deletePlaceholder(ctx, chatID, placeholderID)
		b.logger.Error("fact_failed",
			zap.Int64("chat_id", chatID),
			zap.Int64("user_id", userID),
			zap.Error(err))
		b.sendMessage(ctx, chatID, "❌ "+providerUserMessage(err))
		b.recordRequest(chatID, userID, latitude, longitude, outcomeFailed, b.clock.Now().Sub(start).Milliseconds())
		return
	}

	b.sendFact(ctx, chatID, fact)
	b.deletePlaceholder(ctx, chatID, placeholderID)

	deliveredFields := []zap.Field{
		zap.Int64("chat_id", chatID),
		zap.Int64("user_id", userID),
		zap.Int("fact_length", len(fact.Fact)),
		zap.Duration("duration", b.clock.Now().Sub(start)),
	}
	if last := b.sessions.lastFactSent(chatID); !last.IsZero() {
		deliveredFields = append(deliveredFields, zap.Duration("since_last_fact", b.clock.Now().Sub(last)))
	}
	b.sessions.markFactSent(chatID)

	b.logger.Info("fact_delivered", deliveredFields...)
	b.recordRequest(chatID, userID, latitude, longitude, outcomeDelivered, b.clock.Now().Sub(start).Milliseconds())
}

// sendFact delivers the fact text together with the map-link keyboard.
func (b *Bot) sendFact(ctx context.Context, chatID int64, fact LocationFact) {
	keyboard := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: mapButtonText, URL: mapURL(fact.Latitude, fact.Longitude)},
			},
		},
	}

	params := &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        factHeader + fact.Fact,
		ParseMode:   models.ParseModeMarkdown,
		ReplyMarkup: keyboard,
	}

	if _, err := b.tgBot.SendMessage(ctx, params); err != nil {
		b.logger.Error("send_failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// validCoordinates checks that both coordinates are finite and within the
// WGS84 range. Boundary values are accepted.
func validCoordinates(latitude, longitude float64) bool {
	if math.IsNaN(latitude) || math.IsNaN(longitude) ||
		math.IsInf(latitude, 0) || math.IsInf(longitude, 0) {
		return false
	}
	return latitude >= -90 && latitude <= 90 && longitude >= -180 && longitude <= 180
}

func mapURL(latitude, longitude float64) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%v,%v", latitude, longitude)
}
