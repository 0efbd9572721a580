package llm

import "time"

const (
	// GenerationTimeout bounds a single generation call to a provider.
	GenerationTimeout = 120 * time.Second

	// ConnectionTestTimeout bounds a connectivity probe.
	ConnectionTestTimeout = 15 * time.Second

	// DefaultMaxTokens is used when neither the request nor the environment
	// sets a max output token count.
	DefaultMaxTokens = 8000

	// DefaultTemperature is used when neither the request nor the environment
	// sets a temperature.
	DefaultTemperature = 0.7
)

// GenerateOptions are the generation parameters forwarded to every adapter.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64

	// Timeout overrides the adapter's default call timeout. Zero means
	// GenerationTimeout.
	Timeout time.Duration
}

// EffectiveTimeout returns the timeout an adapter should apply to its call.
func (o GenerateOptions) EffectiveTimeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return GenerationTimeout
}

// Generation is the canonical adapter result.
type Generation struct {
	// Text is the generated content.
	Text string `json:"text"`

	// TokensUsed is the provider-reported total token count (0 when unknown).
	TokensUsed int `json:"tokens_used"`

	// Model is the model the provider reports having used, if any.
	Model string `json:"model,omitempty"`
}
