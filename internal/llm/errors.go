package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey means no credential is configured; no request is sent.
	ErrMissingAPIKey = errors.New("llm: OpenRouter API key not found, set OPENROUTER_API_KEY")

	// ErrUnauthorized means the provider rejected the credential.
	ErrUnauthorized = errors.New("llm: invalid API key, check OPENROUTER_API_KEY")
)

// UpstreamError is a failure status (other than 401) or an unusable body
// returned by the provider.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("llm: API request failed: %d - %s", e.StatusCode, e.Body)
}

// TransportError wraps network, timeout and read failures.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("llm: request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type Kind string

const (
	KindConfiguration  Kind = "configuration"
	KindAuthentication Kind = "authentication"
	KindUpstream       Kind = "upstream"
	KindTransport      Kind = "transport"
	KindUnknown        Kind = "unknown"
)

// KindOf classifies err for callers that need to branch on the failure.
func KindOf(err error) Kind {
	var upstream *UpstreamError
	var transport *TransportError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingAPIKey):
		return KindConfiguration
	case errors.Is(err, ErrUnauthorized):
		return KindAuthentication
	case errors.As(err, &upstream):
		return KindUpstream
	case errors.As(err, &transport):
		return KindTransport
	default:
		return KindUnknown
	}
}
