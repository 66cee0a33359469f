// telegram_client_mock.go
package main

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/mock"
)

// MockTelegramClient is a mock implementation of TelegramClient for testing.
// Each method prefers its Func override; otherwise it falls back to testify
// expectations.
type MockTelegramClient struct {
	mock.Mock
	SendMessageFunc   func(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	DeleteMessageFunc func(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	SetWebhookFunc    func(ctx context.Context, params *bot.SetWebhookParams) (bool, error)
	DeleteWebhookFunc func(ctx context.Context, params *bot.DeleteWebhookParams) (bool, error)
	StartFunc         func(ctx context.Context)
}

// SendMessage mocks sending a message.
func (m *MockTelegramClient) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, params)
	}
	args := m.Called(ctx, params)
	if msg, ok := args.Get(0).(*models.Message); ok {
		return msg, args.Error(1)
	}
	return nil, args.Error(1)
}

// DeleteMessage mocks deleting a message.
func (m *MockTelegramClient) DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error) {
	if m.DeleteMessageFunc != nil {
		return m.DeleteMessageFunc(ctx, params)
	}
	args := m.Called(ctx, params)
	return args.Bool(0), args.Error(1)
}

// SetWebhook mocks registering a webhook URL.
func (m *MockTelegramClient) SetWebhook(ctx context.Context, params *bot.SetWebhookParams) (bool, error) {
	if m.SetWebhookFunc != nil {
		return m.SetWebhookFunc(ctx, params)
	}
	args := m.Called(ctx, params)
	return args.Bool(0), args.Error(1)
}

// DeleteWebhook mocks clearing the webhook.
func (m *MockTelegramClient) DeleteWebhook(ctx context.Context, params *bot.DeleteWebhookParams) (bool, error) {
	if m.DeleteWebhookFunc != nil {
		return m.DeleteWebhookFunc(ctx, params)
	}
	args := m.Called(ctx, params)
	return args.Bool(0), args.Error(1)
}

// Start mocks starting the Telegram client.
func (m *MockTelegramClient) Start(ctx context.Context) {
	if m.StartFunc != nil {
		m.StartFunc(ctx)
		return
	}
	m.Called(ctx)
}
