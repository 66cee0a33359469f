package main

import (
	"context"
	"errors"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

// AnthropicProvider is the alternate upstream, selected with
// LLM_PROVIDER=anthropic. Same prompt and output budget as the OpenAI path.
type AnthropicProvider struct {
	client *anthropic.Client
	model  anthropic.Model
}

func NewAnthropicProvider(apiKey, model string) *AnthropicProvider {
	m := anthropic.ModelClaude3Dot5Sonnet20240620
	if model != "" {
		m = anthropic.Model(model)
	}
	return &AnthropicProvider{
		client: anthropic.NewClient(apiKey),
		model:  m,
	}
}

func (p *AnthropicProvider) FactForLocation(ctx context.Context, latitude, longitude float64) (LocationFact, error) {
	temperature := float32(0.7)
	resp, err := p.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:  p.model,
		System: factSystemPrompt,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewTextMessageContent(buildLocationPrompt(latitude, longitude)),
				},
			},
		},
		MaxTokens:   150,
		Temperature: &temperature,
	})
	if err != nil {
		return LocationFact{}, classifyAnthropicError(err)
	}

	if len(resp.Content) == 0 || resp.Content[0].Type != anthropic.MessagesContentTypeText {
		return LocationFact{}, newProviderError(ProviderErrEmptyResponse, errors.New("message has no text content"))
	}

	fact := strings.TrimSpace(resp.Content[0].GetText())
	if fact == "" {
		return LocationFact{}, newProviderError(ProviderErrEmptyResponse, errors.New("message content is empty"))
	}

	return LocationFact{Fact: fact, Latitude: latitude, Longitude: longitude}, nil
}

func classifyAnthropicError(err error) error {
	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsRateLimitErr():
			return newProviderError(ProviderErrRateLimited, err)
		case apiErr.IsOverloadedErr(), apiErr.IsApiErr():
			return newProviderError(ProviderErrUnavailable, err)
		default:
			return newProviderError(ProviderErrUnknown, err)
		}
	}
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatusCode(reqErr.StatusCode, err)
	}
	return newProviderError(ProviderErrUnknown, err)
}
