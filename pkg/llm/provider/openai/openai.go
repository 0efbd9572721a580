// Package openai implements the generic adapter for any provider that speaks
// the OpenAI chat-completions protocol (OpenAI, OpenRouter, xAI, Groq, Perplexity).
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/papercomputeco/sitesmith/pkg/llm"
)

const chatCompletionsPath = "/chat/completions"

// Provider is the OpenAI-compatible adapter for one registry entry.
type Provider struct {
	name       string
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Provider.
type Option func(*Provider)

// WithHTTPClient overrides the HTTP client. Timeouts are applied per call via
// the request context, so the client itself should not set one.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// New creates an adapter posting to baseURL + "/chat/completions".
func New(name, baseURL, apiKey string, opts ...Option) *Provider {
	p := &Provider{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return p.name
}

// Generate sends the whole conversation, system message included, as the
// messages array. OpenAI-compatible APIs accept an inline system role.
func (p *Provider) Generate(ctx context.Context, model string, conv llm.Conversation, opts llm.GenerateOptions) (*llm.Generation, error) {
	if p.apiKey == "" {
		return nil, &llm.AuthError{Provider: p.name, Message: "missing API key"}
	}

	data, err := json.Marshal(buildRequest(model, conv, opts))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.EffectiveTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+chatCompletionsPath, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, &llm.NetworkError{Provider: p.name, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &llm.NetworkError{Provider: p.name, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, p.statusError(resp.StatusCode, body)
	}

	return p.parseResponse(body)
}

func buildRequest(model string, conv llm.Conversation, opts llm.GenerateOptions) chatRequest {
	messages := make([]chatMessage, 0, len(conv))
	for _, msg := range conv {
		messages = append(messages, chatMessage{Role: msg.Role, Content: msg.Content})
	}

	return chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
}

func (p *Provider) parseResponse(body []byte) (*llm.Generation, error) {
	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &llm.MalformedResponseError{Provider: p.name, Err: err}
	}

	if len(result.Choices) == 0 {
		return nil, &llm.EmptyResponseError{Provider: p.name}
	}

	text, err := contentText(result.Choices[0].Message.Content)
	if err != nil {
		return nil, &llm.MalformedResponseError{Provider: p.name, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &llm.EmptyResponseError{Provider: p.name}
	}

	gen := &llm.Generation{
		Text:  text,
		Model: result.Model,
	}
	if result.Usage != nil {
		gen.TokensUsed = result.Usage.TotalTokens
	}

	return gen, nil
}

// contentText flattens a message content that is either a string or an
// array of {type, text} parts.
func contentText(content any) (string, error) {
	switch c := content.(type) {
	case nil:
		return "", nil
	case string:
		return c, nil
	case []any:
		var b strings.Builder
		for _, item := range c {
			part, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := part["text"].(string); ok {
				b.WriteString(text)
			}
		}
		return b.String(), nil
	default:
		return "", errors.New("unexpected message content type")
	}
}

func (p *Provider) statusError(status int, body []byte) error {
	msg := providerMessage(body)

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &llm.AuthError{Provider: p.name, Message: msg}
	}

	return &llm.ProviderHTTPError{Provider: p.name, Status: status, Message: msg}
}

// providerMessage extracts a human-readable message from an error body,
// returning "" when none can be decoded.
func providerMessage(body []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}

	if env.Error != nil {
		switch m := env.Error.Message.(type) {
		case string:
			return m
		case nil:
		default:
			if b, err := json.Marshal(m); err == nil {
				return string(b)
			}
		}
	}

	return env.Message
}
