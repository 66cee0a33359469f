package main

import (
	"errors"
	"fmt"
)

// User-facing replies for provider failures. The raw upstream error is never
// shown to the user, only logged.
const (
	msgProviderRateLimited = "Превышен лимит запросов. Попробуйте через минуту."
	msgProviderUnavailable = "Сервис временно недоступен. Попробуйте позже."
	msgProviderFailed      = "Не удалось получить факт. Попробуйте ещё раз."
)

// ProviderErrorKind classifies an upstream LLM failure.
type ProviderErrorKind int

const (
	ProviderErrUnknown ProviderErrorKind = iota
	ProviderErrEmptyResponse
	ProviderErrRateLimited
	ProviderErrUnavailable
)

func (k ProviderErrorKind) String() string {
	switch k {
	case ProviderErrEmptyResponse:
		return "empty_response"
	case ProviderErrRateLimited:
		return "rate_limited"
	case ProviderErrUnavailable:
		return "upstream_unavailable"
	default:
		return "unknown"
	}
}

// ProviderError wraps an upstream failure with its classification.
type ProviderError struct {
	Kind ProviderErrorKind
	Err  error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("provider error (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("provider error (%s)", e.Kind)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// UserMessage returns the apology string shown to the user for this failure.
func (e *ProviderError) UserMessage() string {
	switch e.Kind {
	case ProviderErrRateLimited:
		return msgProviderRateLimited
	case ProviderErrUnavailable:
		return msgProviderUnavailable
	default:
		// An empty completion reads the same as any other fetch failure.
		return msgProviderFailed
	}
}

func newProviderError(kind ProviderErrorKind, err error) *ProviderError {
	return &ProviderError{Kind: kind, Err: err}
}

// providerUserMessage maps any error coming out of a FactProvider to the reply
// sent to the user.
func providerUserMessage(err error) string {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.UserMessage()
	}
	return msgProviderFailed
}
