package main

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TransportMode selects how updates reach the bot. Exactly one mode is active
// for the lifetime of the process.
type TransportMode string

const (
	ModePolling TransportMode = "polling"
	ModeWebhook TransportMode = "webhook"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	BotToken string

	Provider        string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	AnthropicModel  string

	Mode           TransportMode
	WebhookBaseURL string
	ListenPort     int

	RateLimitMax    int
	RateLimitWindow time.Duration

	LLMTimeout     time.Duration
	LLMBudgetRPS   float64
	LLMBudgetBurst int

	StatsDBPath string

	LogLevel string
	LogPath  string
}

// loadConfig reads configuration from environment variables and validates the
// combination. Any violation here is fatal at startup; a malformed value is a
// configuration error, not an invitation to fall back to the default.
func loadConfig() (*Config, error) {
	cfg := &Config{
		BotToken:        getEnv("BOT_TOKEN", ""),
		Provider:        getEnv("LLM_PROVIDER", ProviderOpenAI),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", ""),
		Mode:            TransportMode(getEnv("BOT_MODE", string(ModePolling))),
		WebhookBaseURL:  getEnv("WEBHOOK_BASE_URL", ""),
		StatsDBPath:     getEnv("STATS_DB_PATH", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogPath:         getEnv("LOG_PATH", ""),
	}

	var err error
	if cfg.ListenPort, err = getEnvInt("LISTEN_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.RateLimitMax, err = getEnvInt("RATE_LIMIT_MAX", 1); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getEnvDuration("RATE_LIMIT_WINDOW", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.LLMTimeout, err = getEnvDuration("LLM_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.LLMBudgetRPS, err = getEnvFloat("LLM_BUDGET_RPS", 5); err != nil {
		return nil, err
	}
	if cfg.LLMBudgetBurst, err = getEnvInt("LLM_BUDGET_BURST", 10); err != nil {
		return nil, err
	}

	if cfg.BotToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=%s", ProviderOpenAI)
		}
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required when LLM_PROVIDER=%s", ProviderAnthropic)
		}
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Provider)
	}

	switch cfg.Mode {
	case ModePolling:
	case ModeWebhook:
		if cfg.WebhookBaseURL == "" {
			return nil, fmt.Errorf("WEBHOOK_BASE_URL is required when BOT_MODE=%s", ModeWebhook)
		}
	default:
		return nil, fmt.Errorf("unknown BOT_MODE %q", cfg.Mode)
	}

	if cfg.RateLimitMax < 1 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX must be at least 1")
	}
	if cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return parsed, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return parsed, nil
}
