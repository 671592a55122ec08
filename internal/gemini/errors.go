package gemini

import (
	"fmt"
)

// UpstreamError is returned when the provider answers with a non-success status.
// Details holds the provider's error body: decoded JSON when possible, the raw text otherwise.
type UpstreamError struct {
	StatusCode int
	Details    any
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gemini: upstream returned status %d", e.StatusCode)
}

// TransportError wraps a failure to reach the provider or read its response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "gemini: transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError reports a success response whose shape does not carry an answer.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gemini: unexpected response: %s: %v", e.Reason, e.Err)
	}
	return "gemini: unexpected response: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }
