package main

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider fetches location facts via the OpenAI chat-completion API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider builds the provider. An empty model selects gpt-4o-mini;
// baseURL overrides the API endpoint (proxies, tests).
func NewOpenAIProvider(apiKey, model, baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *OpenAIProvider) FactForLocation(ctx context.Context, latitude, longitude float64) (LocationFact, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: factSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildLocationPrompt(latitude, longitude)},
		},
		MaxTokens:   150,
		Temperature: 0.7,
	})
	if err != nil {
		return LocationFact{}, classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return LocationFact{}, newProviderError(ProviderErrEmptyResponse, errors.New("completion has no choices"))
	}

	fact := strings.TrimSpace(resp.Choices[0].Message.Content)
	if fact == "" {
		return LocationFact{}, newProviderError(ProviderErrEmptyResponse, errors.New("completion content is empty"))
	}

	return LocationFact{Fact: fact, Latitude: latitude, Longitude: longitude}, nil
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatusCode(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatusCode(reqErr.HTTPStatusCode, err)
	}
	return newProviderError(ProviderErrUnknown, err)
}

func classifyStatusCode(status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return newProviderError(ProviderErrRateLimited, err)
	case status >= http.StatusInternalServerError:
		return newProviderError(ProviderErrUnavailable, err)
	default:
		return newProviderError(ProviderErrUnknown, err)
	}
}
