package provider

import (
	"fmt"

	"github.com/papercomputeco/sitesmith/pkg/llm"
	"github.com/papercomputeco/sitesmith/pkg/llm/provider/gemini"
	"github.com/papercomputeco/sitesmith/pkg/llm/provider/openai"
)

// Built-in provider ids, in fallback order.
const (
	OpenAI     = "openai"
	Gemini     = "gemini"
	OpenRouter = "openrouter"
	XAI        = "xai"
	Groq       = "groq"
	Perplexity = "perplexity"
)

// BuiltinConfigs returns the built-in provider catalog in declaration order.
// The order is also the fallback order used by the gateway.
func BuiltinConfigs() []Config {
	return []Config{
		{
			ID:               OpenAI,
			Name:             "OpenAI",
			Kind:             KindOpenAI,
			KeyEnv:           "OPENAI_API_KEY",
			ModelEnv:         "OPENAI_MODEL",
			BaseURL:          "https://api.openai.com/v1",
			DefaultModel:     "gpt-4o",
			Models:           []string{"gpt-4o", "gpt-4o-mini", "gpt-4.1", "gpt-4.1-mini", "o3-mini"},
			MaxContextTokens: 128000,
			Streaming:        true,
		},
		{
			ID:               Gemini,
			Name:             "Google Gemini",
			Kind:             KindGemini,
			KeyEnv:           "GEMINI_API_KEY",
			ModelEnv:         "GEMINI_MODEL",
			DefaultModel:     "gemini-2.0-flash",
			Models:           []string{"gemini-2.0-flash", "gemini-2.5-flash", "gemini-2.5-pro", "gemini-1.5-pro"},
			MaxContextTokens: 1048576,
			Streaming:        true,
		},
		{
			ID:               OpenRouter,
			Name:             "OpenRouter",
			Kind:             KindOpenAI,
			KeyEnv:           "OPENROUTER_API_KEY",
			ModelEnv:         "OPENROUTER_MODEL",
			BaseURL:          "https://openrouter.ai/api/v1",
			DefaultModel:     "anthropic/claude-3.5-sonnet",
			MaxContextTokens: 200000,
			Streaming:        true,
		},
		{
			ID:               XAI,
			Name:             "xAI Grok",
			Kind:             KindOpenAI,
			KeyEnv:           "XAI_API_KEY",
			ModelEnv:         "XAI_MODEL",
			BaseURL:          "https://api.x.ai/v1",
			DefaultModel:     "grok-2-latest",
			Models:           []string{"grok-2-latest", "grok-3", "grok-3-mini"},
			MaxContextTokens: 131072,
			Streaming:        true,
		},
		{
			ID:               Groq,
			Name:             "Groq",
			Kind:             KindOpenAI,
			KeyEnv:           "GROQ_API_KEY",
			ModelEnv:         "GROQ_MODEL",
			BaseURL:          "https://api.groq.com/openai/v1",
			DefaultModel:     "llama-3.3-70b-versatile",
			Models:           []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant", "mixtral-8x7b-32768"},
			MaxContextTokens: 32768,
			Streaming:        true,
		},
		{
			ID:               Perplexity,
			Name:             "Perplexity",
			Kind:             KindOpenAI,
			KeyEnv:           "PERPLEXITY_API_KEY",
			ModelEnv:         "PERPLEXITY_MODEL",
			BaseURL:          "https://api.perplexity.ai",
			DefaultModel:     "sonar-pro",
			Models:           []string{"sonar-pro", "sonar", "sonar-reasoning"},
			MaxContextTokens: 127072,
			Streaming:        false,
		},
	}
}

// DefaultRegistry returns a Registry over the built-in catalog.
func DefaultRegistry() *Registry {
	return NewRegistry(BuiltinConfigs()...)
}

// New creates the Adapter for cfg. An empty apiKey yields an *llm.AuthError.
func New(cfg Config, apiKey string) (Adapter, error) {
	if apiKey == "" {
		return nil, &llm.AuthError{Provider: cfg.ID, Message: cfg.KeyEnv + " is not set"}
	}

	switch cfg.Kind {
	case KindOpenAI:
		return openai.New(cfg.ID, cfg.BaseURL, apiKey), nil
	case KindGemini:
		return gemini.New(cfg.ID, apiKey, gemini.WithBaseURL(cfg.BaseURL)), nil
	default:
		return nil, fmt.Errorf("provider %q: unsupported adapter kind %q", cfg.ID, cfg.Kind)
	}
}
