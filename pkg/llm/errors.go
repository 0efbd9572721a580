package llm

import (
	"fmt"
	"net/http"
)

// AuthError is returned when a provider credential is missing or rejected.
type AuthError struct {
	Provider string
	Message  string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: authentication failed", e.Provider)
	}
	return fmt.Sprintf("%s: authentication failed: %s", e.Provider, e.Message)
}

// ProviderHTTPError is returned when a provider answers with a non-2xx status.
// Message holds the provider-supplied error message when one could be decoded.
type ProviderHTTPError struct {
	Provider string
	Status   int
	Message  string
}

func (e *ProviderHTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s: API error (status %d): %s", e.Provider, e.Status, msg)
}

// EmptyResponseError is returned when a call succeeded but produced no usable content.
type EmptyResponseError struct {
	Provider string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("%s: empty response", e.Provider)
}

// NetworkError wraps a transport failure or timeout.
type NetworkError struct {
	Provider string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedResponseError is returned when a response body has an unexpected shape.
type MalformedResponseError struct {
	Provider string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Provider, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
