// Package provider holds the catalog of known LLM providers and the Adapter
// abstraction the gateway uses to talk to them.
package provider

import (
	"context"

	"github.com/papercomputeco/sitesmith/pkg/llm"
)

// Adapter translates a canonical conversation into one provider's wire format,
// executes the call, and normalizes the result.
//
// Every failure is one of the llm error types (AuthError, ProviderHTTPError,
// EmptyResponseError, NetworkError, MalformedResponseError) so callers can
// decide whether to fall back to another provider.
type Adapter interface {
	// Name returns the provider id the adapter was built for (e.g. "openai", "gemini").
	Name() string

	// Generate runs one chat completion against the given model.
	Generate(ctx context.Context, model string, conv llm.Conversation, opts llm.GenerateOptions) (*llm.Generation, error)
}

// KeySource resolves the runtime credential and model override for a provider.
type KeySource interface {
	// APIKey returns the configured credential, or "" when none is present.
	APIKey(cfg Config) string

	// Model returns the configured model override, or "" when none is present.
	Model(cfg Config) string
}

// Factory builds an Adapter for a provider config and credential.
type Factory func(cfg Config, apiKey string) (Adapter, error)
