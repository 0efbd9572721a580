package gateway

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoProviderConfigured is returned when no registry entry has a credential.
	ErrNoProviderConfigured = errors.New("No AI providers configured. Please set at least one API key.") //nolint:staticcheck // user-facing message

	// ErrProviderNotConfigured is returned by TestConnection for a known
	// provider with no credential.
	ErrProviderNotConfigured = errors.New("provider is not configured")

	// ErrCancelled is returned when the caller abandoned the request.
	ErrCancelled = errors.New("request cancelled")
)

// ValidationError is returned for a malformed request before any provider
// is contacted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ExhaustedError is returned when every candidate provider failed.
type ExhaustedError struct {
	// Attempted lists provider ids in the order they were tried.
	Attempted []string

	// LastError is the message of the final failure.
	LastError string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all providers failed (attempted: %s): %s", strings.Join(e.Attempted, ", "), e.LastError)
}
