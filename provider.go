package main

import (
	"context"
	"fmt"
)

// LocationFact is the transient result of one fact request. Facts are never
// cached: every location request re-queries the upstream.
type LocationFact struct {
	Fact      string
	Latitude  float64
	Longitude float64
}

// FactProvider asks an upstream LLM for a short trivia fact about a place.
// Implementations classify failures as ProviderError and never retry.
type FactProvider interface {
	FactForLocation(ctx context.Context, latitude, longitude float64) (LocationFact, error)
}

const factSystemPrompt = "Ты - эксперт по географии и истории. " +
	"Твоя задача - рассказать один интересный факт о месте рядом с указанными координатами. " +
	"Отвечай ТОЛЬКО на русском языке, 1-2 предложения максимум. Будь краток, но информативен."

// buildLocationPrompt produces the per-request user prompt embedding the
// coordinates.
func buildLocationPrompt(latitude, longitude float64) string {
	return fmt.Sprintf(`Расскажи один интересный факт о месте с координатами %v, %v.

Инструкции:
- Отвечай ТОЛЬКО на русском языке
- Максимум 1-2 предложения
- Расскажи что-то необычное, историческое или географическое
- Если знаешь название места - укажи его
- Будь краток, но информативен

Примеры хороших ответов:
"В этом месте в 1812 году проходила армия Наполеона во время отступления из Москвы."
"Здесь находится древний курган, датируемый 3-м тысячелетием до нашей эры."`, latitude, longitude)
}

// newFactProvider builds the provider selected by configuration. The config
// has already been validated, so an unknown provider cannot reach here.
func newFactProvider(cfg *Config) FactProvider {
	if cfg.Provider == ProviderAnthropic {
		return NewAnthropicProvider(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	}
	return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
}
