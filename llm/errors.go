package llm

import "fmt"

// AdapterError is the base error type for adapter failures. The orchestrator
// does not retry; classification exists for logging and for callers that
// wrap the engine.
type AdapterError struct {
	Message string
	Cause   error
}

func (e *AdapterError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AdapterError) Unwrap() error { return e.Cause }

// ProviderError is an error reported by an LLM provider.
type ProviderError struct {
	AdapterError
	Provider   string
	StatusCode int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("[%s] %s (status=%d)", e.Provider, e.Message, e.StatusCode)
}

type AuthenticationError struct{ ProviderError }
type RateLimitError struct{ ProviderError }
type InvalidRequestError struct{ ProviderError }
type ContextLengthError struct{ ProviderError }
type ServerError struct{ ProviderError }

// ErrorFromStatusCode maps an HTTP status code onto the provider error
// taxonomy.
func ErrorFromStatusCode(statusCode int, message, provider string) error {
	pe := ProviderError{
		AdapterError: AdapterError{Message: message},
		Provider:     provider,
		StatusCode:   statusCode,
	}
	switch statusCode {
	case 400, 404, 422:
		return &InvalidRequestError{ProviderError: pe}
	case 401, 403:
		return &AuthenticationError{ProviderError: pe}
	case 413:
		return &ContextLengthError{ProviderError: pe}
	case 429:
		return &RateLimitError{ProviderError: pe}
	case 500, 502, 503, 504:
		return &ServerError{ProviderError: pe}
	default:
		return &pe
	}
}
