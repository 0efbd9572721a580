// Package gemini implements the Google Gemini adapter on top of the genai SDK.
package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/papercomputeco/sitesmith/pkg/llm"
)

// Sampling parameters applied to every Gemini call.
const (
	topP = 0.95
	topK = 40
)

// Provider is the Gemini adapter.
type Provider struct {
	name       string
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL points the SDK at a different API endpoint. Empty keeps the
// SDK default.
func WithBaseURL(url string) Option {
	return func(p *Provider) {
		p.baseURL = url
	}
}

// WithHTTPClient overrides the HTTP client used by the SDK.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		p.httpClient = c
	}
}

// New creates a Gemini adapter registered under name.
func New(name, apiKey string, opts ...Option) *Provider {
	p := &Provider{
		name:   name,
		apiKey: apiKey,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return p.name
}

// Generate issues a single GenerateContent call. System messages become the
// system instruction and assistant turns are sent with the "model" role.
func (p *Provider) Generate(ctx context.Context, model string, conv llm.Conversation, opts llm.GenerateOptions) (*llm.Generation, error) {
	if p.apiKey == "" {
		return nil, &llm.AuthError{Provider: p.name, Message: "missing API key"}
	}

	callCtx, cancel := context.WithTimeout(ctx, opts.EffectiveTimeout())
	defer cancel()

	client, err := p.client(callCtx)
	if err != nil {
		return nil, &llm.NetworkError{Provider: p.name, Err: err}
	}

	resp, err := client.Models.GenerateContent(callCtx, model, toContents(conv), toConfig(conv, opts))
	if err != nil {
		return nil, p.mapError(callCtx, err)
	}

	return p.fromResponse(resp)
}

func (p *Provider) client(ctx context.Context) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:     p.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.httpClient,
	}
	if p.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.baseURL}
	}
	return genai.NewClient(ctx, cfg)
}

// toContents converts the non-system messages into Gemini contents.
func toContents(conv llm.Conversation) []*genai.Content {
	msgs := conv.WithoutSystem()
	contents := make([]*genai.Content, 0, len(msgs))
	for _, msg := range msgs {
		role := genai.Role(genai.RoleUser)
		if msg.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return contents
}

func toConfig(conv llm.Conversation, opts llm.GenerateOptions) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(opts.Temperature)),
		TopP:            genai.Ptr(float32(topP)),
		TopK:            genai.Ptr(float32(topK)),
		MaxOutputTokens: int32(opts.MaxTokens), //nolint:gosec // bounded by request validation
		SafetySettings:  safetySettings(),
	}

	if system := conv.System(); system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	return cfg
}

func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}

	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		})
	}
	return settings
}

func (p *Provider) fromResponse(resp *genai.GenerateContentResponse) (*llm.Generation, error) {
	if resp == nil {
		return nil, &llm.EmptyResponseError{Provider: p.name}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, &llm.EmptyResponseError{Provider: p.name}
	}

	gen := &llm.Generation{
		Text:  text,
		Model: resp.ModelVersion,
	}
	if resp.UsageMetadata != nil {
		gen.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return gen, nil
}

// mapError translates SDK failures into the shared llm error types.
func (p *Provider) mapError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &llm.NetworkError{Provider: p.name, Err: ctxErr}
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var apiErrPtr *genai.APIError
		if !errors.As(err, &apiErrPtr) {
			return &llm.NetworkError{Provider: p.name, Err: err}
		}
		apiErr = *apiErrPtr
	}

	if isAuthFailure(apiErr) {
		return &llm.AuthError{Provider: p.name, Message: apiErr.Message}
	}

	return &llm.ProviderHTTPError{Provider: p.name, Status: apiErr.Code, Message: apiErr.Message}
}

// isAuthFailure reports whether the API rejected the credential. Gemini
// answers an invalid key with 400 INVALID_ARGUMENT rather than 401.
func isAuthFailure(e genai.APIError) bool {
	switch e.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	case http.StatusBadRequest:
		msg := strings.ToLower(e.Message)
		return strings.Contains(msg, "api key") || strings.Contains(msg, "api_key_invalid")
	}
	return false
}
