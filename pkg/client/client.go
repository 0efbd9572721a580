// Package client is a small HTTP client for a running sitesmith gateway,
// used by the CLI commands.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// askTimeout covers the gateway's own fallback loop across several providers.
const askTimeout = 10 * time.Minute

// AskRequest mirrors the /api/ask-ai request body.
type AskRequest struct {
	Prompt      string   `json:"prompt"`
	Provider    string   `json:"provider,omitempty"`
	Model       string   `json:"model,omitempty"`
	SessionID   string   `json:"sessionId,omitempty"`
	TemplateID  string   `json:"templateId,omitempty"`
	Stack       string   `json:"stack,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// AskResponse mirrors a successful /api/ask-ai response.
type AskResponse struct {
	Response     string `json:"response"`
	ModelUsed    string `json:"modelUsed"`
	ProviderUsed string `json:"providerUsed"`
	TokensUsed   int    `json:"tokensUsed"`
}

// Health is the /api/health response.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ProviderEnv is one entry of the /api/check-env report.
type ProviderEnv struct {
	Name             string `json:"name"`
	APIKeyConfigured bool   `json:"apiKeyConfigured"`
	ModelConfigured  bool   `json:"modelConfigured"`
	BaseURL          string `json:"baseUrl"`
	DefaultModel     string `json:"defaultModel"`
	Model            string `json:"model"`
}

// Env is the /api/check-env response.
type Env struct {
	Env          map[string]ProviderEnv `json:"env"`
	RateLimiting struct {
		Enabled bool `json:"enabled"`
		Limit   int  `json:"limit"`
	} `json:"rateLimiting"`
}

// Error is a non-2xx gateway response.
type Error struct {
	Status             int
	Message            string
	WaitTimeMinutes    int
	ProvidersAttempted []string
}

func (e *Error) Error() string {
	switch {
	case e.WaitTimeMinutes > 0:
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	case len(e.ProvidersAttempted) > 0:
		return fmt.Sprintf("%s (tried: %s)", e.Message, strings.Join(e.ProvidersAttempted, ", "))
	case e.Message != "":
		return e.Message
	default:
		return fmt.Sprintf("gateway returned status %d", e.Status)
	}
}

// Client talks to one gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the gateway at baseURL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: askTimeout},
	}
}

// Health calls GET /api/health.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	out := &Health{}
	if err := c.do(ctx, http.MethodGet, "/api/health", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// CheckEnv calls GET /api/check-env.
func (c *Client) CheckEnv(ctx context.Context) (*Env, error) {
	out := &Env{}
	if err := c.do(ctx, http.MethodGet, "/api/check-env", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Ask calls POST /api/ask-ai.
func (c *Client) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	out := &AskResponse{}
	if err := c.do(ctx, http.MethodPost, "/api/ask-ai", req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("contacting gateway at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope struct {
			Message            string   `json:"message"`
			WaitTimeMinutes    int      `json:"waitTimeMinutes"`
			ProvidersAttempted []string `json:"providersAttempted"`
		}
		_ = json.Unmarshal(data, &envelope)
		return &Error{
			Status:             resp.StatusCode,
			Message:            envelope.Message,
			WaitTimeMinutes:    envelope.WaitTimeMinutes,
			ProvidersAttempted: envelope.ProvidersAttempted,
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
