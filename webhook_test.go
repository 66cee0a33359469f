package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newWebhookTestBot(provider FactProvider, tgClient TelegramClient) *Bot {
	cfg := testConfig()
	cfg.Mode = ModeWebhook
	cfg.WebhookBaseURL = "https://bot.example.com"
	return NewBot(cfg, provider, nil, &MockClock{now: time.Now()}, tgClient, zap.NewNop())
}

func postWebhook(b *Bot, body string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	b.webhookHandler(recorder, request)
	return recorder
}

func TestWebhookHandler_BadBody(t *testing.T) {
	b := newWebhookTestBot(&stubProvider{}, newRecordingClient())

	recorder := postWebhook(b, "{not json")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestWebhookHandler_IgnorableShape(t *testing.T) {
	b := newWebhookTestBot(&stubProvider{}, newRecordingClient())

	// A recognized update without a message (e.g. a callback query) is acked
	// and dropped.
	recorder := postWebhook(b, `{"update_id": 7}`)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestWebhookHandler_MissingChat(t *testing.T) {
	b := newWebhookTestBot(&stubProvider{}, newRecordingClient())

	recorder := postWebhook(b, `{"update_id": 7, "message": {"message_id": 5, "text": "hi"}}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestWebhookHandler_LocationDispatched(t *testing.T) {
	sentCh := make(chan *bot.SendMessageParams, 4)
	tgClient := &MockTelegramClient{
		SendMessageFunc: func(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
			sentCh <- params
			return &models.Message{ID: 1}, nil
		},
		DeleteMessageFunc: func(ctx context.Context, params *bot.DeleteMessageParams) (bool, error) {
			return true, nil
		},
	}
	provider := &stubProvider{fact: "Здесь находится древний курган."}
	b := newWebhookTestBot(provider, tgClient)

	body := `{
		"update_id": 7,
		"message": {
			"message_id": 5,
			"chat": {"id": 100},
			"from": {"id": 1},
			"location": {"latitude": 55.7558, "longitude": 37.6176}
		}
	}`

	recorder := postWebhook(b, body)
	assert.Equal(t, http.StatusOK, recorder.Code, "ack happens before processing")

	// Processing continues after the ack; wait for the placeholder and the
	// fact message.
	var texts []string
	for i := 0; i < 2; i++ {
		select {
		case params := <-sentCh:
			texts = append(texts, params.Text)
		case <-time.After(2 * time.Second):
			t.Fatalf("expected %d outbound messages after dispatch, got %d", 2, len(texts))
		}
	}
	assert.Equal(t, msgSearching, texts[0])
	assert.Equal(t, factHeader+provider.fact, texts[1])
}

type panickingProvider struct{}

func (panickingProvider) FactForLocation(ctx context.Context, latitude, longitude float64) (LocationFact, error) {
	panic("boom")
}

func TestWebhookHandler_PanicContained(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	cfg := testConfig()
	cfg.Mode = ModeWebhook
	cfg.WebhookBaseURL = "https://bot.example.com"
	b := NewBot(cfg, panickingProvider{}, nil, &MockClock{now: time.Now()}, newRecordingClient(), zap.New(core))

	body := `{
		"update_id": 7,
		"message": {
			"message_id": 5,
			"chat": {"id": 100},
			"from": {"id": 1},
			"location": {"latitude": 55.7558, "longitude": 37.6176}
		}
	}`

	recorder := postWebhook(b, body)
	assert.Equal(t, http.StatusOK, recorder.Code)

	// A panic in the dispatched update must be caught and logged, not take
	// the process down.
	deadline := time.After(2 * time.Second)
	for logs.FilterMessage("update_panic").Len() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected the panic to be recovered and logged")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestHealthHandler(t *testing.T) {
	b := newWebhookTestBot(&stubProvider{}, newRecordingClient())

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	b.healthHandler(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"ok"`)
	assert.Contains(t, recorder.Body.String(), `"mode":"webhook"`)
}

func TestStartPolling_ClearsWebhookFirst(t *testing.T) {
	var clearedBeforeStart bool
	var cleared bool
	tgClient := &MockTelegramClient{
		DeleteWebhookFunc: func(ctx context.Context, params *bot.DeleteWebhookParams) (bool, error) {
			cleared = true
			return true, nil
		},
		StartFunc: func(ctx context.Context) {
			clearedBeforeStart = cleared
		},
	}

	b := NewBot(testConfig(), &stubProvider{}, nil, &MockClock{now: time.Now()}, tgClient, zap.NewNop())

	require.NoError(t, b.Start(context.Background()))
	assert.True(t, cleared, "polling must clear any registered webhook")
	assert.True(t, clearedBeforeStart, "webhook must be cleared before the poll loop starts")
}
