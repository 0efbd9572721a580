package provider

import (
	"fmt"
	"slices"
)

// Kind selects the adapter implementation for a provider.
type Kind string

const (
	// KindOpenAI is any provider speaking the OpenAI chat-completions protocol.
	KindOpenAI Kind = "openai"

	// KindGemini is Google's Gemini API, reached through the genai SDK.
	KindGemini Kind = "gemini"
)

// Config is an immutable catalog entry describing one provider.
type Config struct {
	// ID is the unique registry key (e.g. "openrouter").
	ID string

	// Name is the human-readable display name.
	Name string

	Kind Kind

	// KeyEnv is the environment variable holding the credential (e.g. "OPENAI_API_KEY").
	KeyEnv string

	// ModelEnv is the environment variable holding a model override (e.g. "OPENAI_MODEL").
	ModelEnv string

	// BaseURL is the HTTP API root. Empty for SDK-backed providers.
	BaseURL string

	DefaultModel     string
	Models           []string
	MaxContextTokens int
	Streaming        bool
}

// SupportsModel returns true if model is in the declared model list.
func (c Config) SupportsModel(model string) bool {
	return slices.Contains(c.Models, model)
}

func (c Config) validate() error {
	if c.ID == "" {
		return fmt.Errorf("provider config missing id")
	}
	if len(c.Models) > 0 && !c.SupportsModel(c.DefaultModel) {
		return fmt.Errorf("provider %q: default model %q not in models %v", c.ID, c.DefaultModel, c.Models)
	}
	return nil
}
