// Package gateway routes site-builder chat requests through the configured
// LLM providers with ordered fallback, replaying and persisting the
// conversation for each session.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/papercomputeco/sitesmith/gateway/worker"
	"github.com/papercomputeco/sitesmith/pkg/llm"
	"github.com/papercomputeco/sitesmith/pkg/llm/provider"
	"github.com/papercomputeco/sitesmith/pkg/logger"
	"github.com/papercomputeco/sitesmith/pkg/storage"
	"github.com/papercomputeco/sitesmith/pkg/templates"
)

const (
	connectionTestPrompt    = "Reply with the single word: pong"
	connectionTestMaxTokens = 50
	maxTemperature          = 2.0
)

// Request is one ask-ai call.
type Request struct {
	Prompt     string
	Provider   string
	Model      string
	SessionID  string
	TemplateID string
	Stack      string

	// MaxTokens and Temperature override the configured defaults when set.
	MaxTokens   *int
	Temperature *float64
}

// Attempt records one provider call made while serving a request.
type Attempt struct {
	Provider string
	Model    string
	Err      error
}

// Result is a successful generation.
type Result struct {
	Text         string
	ModelUsed    string
	ProviderUsed string
	TokensUsed   int
	Attempts     []Attempt
}

// ProviderStatus is the check-env view of one registry entry.
type ProviderStatus struct {
	ID               string
	Name             string
	APIKeyConfigured bool
	ModelConfigured  bool
	BaseURL          string
	DefaultModel     string

	// Model is the model a request without an explicit model would use.
	Model string
}

// TestResult is a successful connectivity probe.
type TestResult struct {
	Provider string
	Model    string
	Response string
}

// Gateway is the fallback router. It is safe for concurrent use.
type Gateway struct {
	registry    *provider.Registry
	keys        provider.KeySource
	newAdapter  provider.Factory
	driver      storage.Driver
	catalog     *templates.Catalog
	pool        *worker.Pool
	maxTokens   int
	temperature float64
	logger      *slog.Logger
}

// New creates a Gateway and starts its persistence workers.
func New(c Config) (*Gateway, error) {
	if c.Keys == nil {
		return nil, errors.New("gateway requires a key source")
	}
	if c.Registry == nil {
		c.Registry = provider.DefaultRegistry()
	}
	if c.NewAdapter == nil {
		c.NewAdapter = provider.New
	}
	if c.Catalog == nil {
		c.Catalog = templates.Default()
	}
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	g := &Gateway{
		registry:    c.Registry,
		keys:        c.Keys,
		newAdapter:  c.NewAdapter,
		driver:      c.Driver,
		catalog:     c.Catalog,
		maxTokens:   llm.DefaultMaxTokens,
		temperature: llm.DefaultTemperature,
		logger:      c.Logger,
	}
	if c.MaxTokens > 0 {
		g.maxTokens = c.MaxTokens
	}
	if c.Temperature != nil {
		g.temperature = *c.Temperature
	}

	pool, err := worker.NewPool(&worker.Config{
		Driver:     c.Driver,
		Publisher:  c.Publisher,
		NumWorkers: c.Workers,
		QueueSize:  c.QueueSize,
		Logger:     c.Logger.With("component", "worker"),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create worker pool: %w", err)
	}
	g.pool = pool

	return g, nil
}

// Generate serves one request, trying each configured provider in turn
// until one succeeds.
func (g *Gateway) Generate(ctx context.Context, req Request) (*Result, error) {
	opts, err := g.validate(req)
	if err != nil {
		return nil, err
	}

	candidates := g.candidates(req.Provider)
	if len(candidates) == 0 {
		return nil, ErrNoProviderConfigured
	}

	if ctx.Err() != nil {
		return nil, ErrCancelled
	}

	conv := g.compose(ctx, req)
	started := time.Now()

	var (
		attempts []Attempt
		lastErr  error
	)
	for _, cfg := range candidates {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}

		model := g.modelFor(cfg, req)
		gen, err := g.attempt(ctx, cfg, model, conv, opts)
		attempts = append(attempts, Attempt{Provider: cfg.ID, Model: model, Err: err})

		if err != nil {
			if ctx.Err() != nil {
				g.logger.Info("request cancelled during generation", "provider", cfg.ID)
				return nil, ErrCancelled
			}
			g.logger.Warn("provider attempt failed",
				"provider", cfg.ID,
				"model", model,
				"error", err,
			)
			lastErr = err
			continue
		}

		if ctx.Err() != nil {
			return nil, ErrCancelled
		}

		result := &Result{
			Text:         gen.Text,
			ModelUsed:    model,
			ProviderUsed: cfg.ID,
			TokensUsed:   gen.TokensUsed,
			Attempts:     attempts,
		}

		g.logger.Info("generation completed",
			"provider", cfg.ID,
			"model", model,
			"tokens_used", gen.TokensUsed,
			"attempts", len(attempts),
			"duration", time.Since(started),
		)

		g.pool.Enqueue(worker.Job{
			SessionID:   req.SessionID,
			Provider:    cfg.ID,
			Model:       model,
			Prompt:      req.Prompt,
			Response:    gen.Text,
			TokensUsed:  gen.TokensUsed,
			Attempted:   attemptedIDs(attempts),
			StartedAt:   started,
			CompletedAt: time.Now(),
		})

		return result, nil
	}

	exhausted := &ExhaustedError{Attempted: attemptedIDs(attempts)}
	if lastErr != nil {
		exhausted.LastError = lastErr.Error()
	}
	g.logger.Error("all providers failed",
		"attempted", exhausted.Attempted,
		"last_error", exhausted.LastError,
	)
	return nil, exhausted
}

// TestConnection sends a short fixed prompt to one provider.
func (g *Gateway) TestConnection(ctx context.Context, providerID, model string) (*TestResult, error) {
	cfg, err := g.registry.Lookup(providerID)
	if err != nil {
		return nil, err
	}

	key := g.keys.APIKey(cfg)
	if key == "" {
		return nil, ErrProviderNotConfigured
	}

	if model == "" {
		model = g.defaultModel(cfg)
	}

	adapter, err := g.newAdapter(cfg, key)
	if err != nil {
		return nil, err
	}

	conv := llm.Conversation{llm.NewTextMessage(llm.RoleUser, connectionTestPrompt)}
	gen, err := adapter.Generate(ctx, model, conv, llm.GenerateOptions{
		MaxTokens:   connectionTestMaxTokens,
		Temperature: 0,
		Timeout:     llm.ConnectionTestTimeout,
	})
	if err != nil {
		g.logger.Warn("connection test failed", "provider", cfg.ID, "model", model, "error", err)
		return nil, err
	}

	return &TestResult{Provider: cfg.ID, Model: model, Response: gen.Text}, nil
}

// Environment reports the configuration state of every provider in
// declaration order.
func (g *Gateway) Environment() []ProviderStatus {
	all := g.registry.All()
	out := make([]ProviderStatus, 0, len(all))
	for _, cfg := range all {
		out = append(out, ProviderStatus{
			ID:               cfg.ID,
			Name:             cfg.Name,
			APIKeyConfigured: g.keys.APIKey(cfg) != "",
			ModelConfigured:  g.keys.Model(cfg) != "",
			BaseURL:          cfg.BaseURL,
			DefaultModel:     cfg.DefaultModel,
			Model:            g.defaultModel(cfg),
		})
	}
	return out
}

// Close drains the persistence workers. Call after the HTTP server stops.
func (g *Gateway) Close() {
	g.pool.Close()
}

func (g *Gateway) validate(req Request) (llm.GenerateOptions, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return llm.GenerateOptions{}, &ValidationError{Field: "prompt", Message: "Prompt is required"}
	}

	opts := llm.GenerateOptions{
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}
	if req.MaxTokens != nil {
		if *req.MaxTokens <= 0 {
			return opts, &ValidationError{Field: "maxTokens", Message: "maxTokens must be a positive integer"}
		}
		opts.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		if *req.Temperature < 0 || *req.Temperature > maxTemperature {
			return opts, &ValidationError{Field: "temperature", Message: "temperature must be between 0 and 2"}
		}
		opts.Temperature = *req.Temperature
	}

	return opts, nil
}

// candidates returns the providers to try: the requested one first when it
// is known and configured, then every other configured provider in
// declaration order.
func (g *Gateway) candidates(requested string) []provider.Config {
	configured := g.registry.ListConfigured(g.keys)

	requested = strings.TrimSpace(requested)
	if requested == "" {
		return configured
	}

	first, err := g.registry.Lookup(requested)
	if err != nil {
		g.logger.Debug("requested provider unknown, using fallback order", "provider", requested)
		return configured
	}

	out := make([]provider.Config, 0, len(configured))
	for _, cfg := range configured {
		if cfg.ID == first.ID {
			out = append(out, cfg)
			break
		}
	}
	if len(out) == 0 {
		g.logger.Debug("requested provider not configured, using fallback order", "provider", first.ID)
	}
	for _, cfg := range configured {
		if cfg.ID != first.ID {
			out = append(out, cfg)
		}
	}
	return out
}

// compose builds the conversation: one system message, the session
// history, then the new user turn.
func (g *Gateway) compose(ctx context.Context, req Request) llm.Conversation {
	var fragment string
	if req.TemplateID != "" {
		if t, ok := g.catalog.Get(req.TemplateID); ok {
			fragment = t.SystemPrompt
		} else {
			g.logger.Debug("unknown template ignored", "template_id", req.TemplateID)
		}
	}

	history := g.history(ctx, req.SessionID)

	conv := make(llm.Conversation, 0, len(history)+2)
	conv = append(conv, llm.NewTextMessage(llm.RoleSystem, composeSystemPrompt(req.Stack, fragment)))
	for _, turn := range history {
		conv = append(conv, turn.Message())
	}
	conv = append(conv, llm.NewTextMessage(llm.RoleUser, req.Prompt))
	return conv
}

// history loads prior turns. A storage failure degrades to a single-turn
// request rather than failing it.
func (g *Gateway) history(ctx context.Context, sessionID string) []llm.ChatTurn {
	if g.driver == nil || sessionID == "" {
		return nil
	}

	turns, err := g.driver.History(ctx, sessionID, storage.MaxHistory)
	if err != nil {
		g.logger.Warn("could not load session history", "session_id", sessionID, "error", err)
		return nil
	}
	return turns
}

// modelFor picks the model for one candidate. An explicit request model
// applies to the requested provider, or to any provider declaring it.
func (g *Gateway) modelFor(cfg provider.Config, req Request) string {
	if req.Model != "" {
		requested, err := g.registry.Lookup(req.Provider)
		if (err == nil && requested.ID == cfg.ID) || cfg.SupportsModel(req.Model) {
			return req.Model
		}
	}
	return g.defaultModel(cfg)
}

func (g *Gateway) defaultModel(cfg provider.Config) string {
	if m := g.keys.Model(cfg); m != "" {
		return m
	}
	return cfg.DefaultModel
}

func (g *Gateway) attempt(ctx context.Context, cfg provider.Config, model string, conv llm.Conversation, opts llm.GenerateOptions) (*llm.Generation, error) {
	adapter, err := g.newAdapter(cfg, g.keys.APIKey(cfg))
	if err != nil {
		return nil, err
	}

	g.logger.Debug("attempting provider", "provider", cfg.ID, "model", model, "messages", len(conv))
	return adapter.Generate(ctx, model, conv, opts)
}

func attemptedIDs(attempts []Attempt) []string {
	ids := make([]string, len(attempts))
	for i, a := range attempts {
		ids[i] = a.Provider
	}
	return ids
}
