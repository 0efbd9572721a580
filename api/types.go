package api

import "github.com/papercomputeco/sitesmith/pkg/templates"

// errorResponse is the envelope for every failed request.
type errorResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// rateLimitedResponse is returned with 429.
type rateLimitedResponse struct {
	OK              bool   `json:"ok"`
	Message         string `json:"message"`
	WaitTimeMinutes int    `json:"waitTimeMinutes"`
	ResetTime       string `json:"resetTime"`
}

// exhaustedResponse is returned when every provider failed.
type exhaustedResponse struct {
	OK                 bool     `json:"ok"`
	Message            string   `json:"message"`
	ProvidersAttempted []string `json:"providersAttempted"`
}

type healthResponse struct {
	OK        bool   `json:"ok"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type providerEnv struct {
	Name             string `json:"name"`
	APIKeyConfigured bool   `json:"apiKeyConfigured"`
	ModelConfigured  bool   `json:"modelConfigured"`
	BaseURL          string `json:"baseUrl"`
	DefaultModel     string `json:"defaultModel"`
	Model            string `json:"model"`
}

type rateLimiting struct {
	Enabled bool `json:"enabled"`
	Limit   int  `json:"limit"`
}

type checkEnvResponse struct {
	OK           bool                   `json:"ok"`
	Env          map[string]providerEnv `json:"env"`
	RateLimiting rateLimiting           `json:"rateLimiting"`
}

type testConnectionRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type testConnectionResponse struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Response string `json:"response"`
}

type askRequest struct {
	Prompt      string   `json:"prompt"`
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	SessionID   string   `json:"sessionId"`
	TemplateID  string   `json:"templateId"`
	Stack       string   `json:"stack"`
	MaxTokens   *int     `json:"maxTokens"`
	Temperature *float64 `json:"temperature"`
}

type askResponse struct {
	OK           bool   `json:"ok"`
	Response     string `json:"response"`
	ModelUsed    string `json:"modelUsed"`
	ProviderUsed string `json:"providerUsed"`
	TokensUsed   int    `json:"tokensUsed"`
}

type templateListResponse struct {
	OK        bool                `json:"ok"`
	Templates []templates.Summary `json:"templates"`
}

type templateResponse struct {
	OK       bool               `json:"ok"`
	Template templates.Template `json:"template"`
}
