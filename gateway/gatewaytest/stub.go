// Package gatewaytest provides scripted provider adapters for tests of the
// gateway and the HTTP surface built on it.
package gatewaytest

import (
	"context"
	"sync"

	"github.com/papercomputeco/sitesmith/pkg/llm"
	"github.com/papercomputeco/sitesmith/pkg/llm/provider"
)

// Call is one Generate invocation seen by a stub.
type Call struct {
	Provider string
	APIKey   string
	Model    string
	Conv     llm.Conversation
	Opts     llm.GenerateOptions
}

// Responder produces the outcome of a call.
type Responder func(ctx context.Context, call Call) (*llm.Generation, error)

// Reply answers every call with text.
func Reply(text string, tokens int) Responder {
	return func(context.Context, Call) (*llm.Generation, error) {
		return &llm.Generation{Text: text, TokensUsed: tokens}, nil
	}
}

// Fail answers every call with err.
func Fail(err error) Responder {
	return func(context.Context, Call) (*llm.Generation, error) {
		return nil, err
	}
}

// Stubs is a provider.Factory whose adapters are scripted per provider id
// and record every call they receive. Providers with no responder fail with
// a 503 ProviderHTTPError.
type Stubs struct {
	mu         sync.Mutex
	responders map[string]Responder
	calls      []Call
}

// NewStubs creates an empty set of scripted adapters.
func NewStubs() *Stubs {
	return &Stubs{responders: make(map[string]Responder)}
}

// On scripts the responder for a provider id.
func (s *Stubs) On(providerID string, r Responder) *Stubs {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responders[providerID] = r
	return s
}

// Factory is the provider.Factory to hand to gateway.Config.
func (s *Stubs) Factory(cfg provider.Config, apiKey string) (provider.Adapter, error) {
	return &adapter{stubs: s, id: cfg.ID, apiKey: apiKey}, nil
}

// Calls returns a copy of every recorded call in order.
func (s *Stubs) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Providers returns the provider id of every recorded call in order.
func (s *Stubs) Providers() []string {
	calls := s.Calls()
	ids := make([]string, len(calls))
	for i, c := range calls {
		ids[i] = c.Provider
	}
	return ids
}

type adapter struct {
	stubs  *Stubs
	id     string
	apiKey string
}

func (a *adapter) Name() string { return a.id }

func (a *adapter) Generate(ctx context.Context, model string, conv llm.Conversation, opts llm.GenerateOptions) (*llm.Generation, error) {
	call := Call{
		Provider: a.id,
		APIKey:   a.apiKey,
		Model:    model,
		Conv:     append(llm.Conversation(nil), conv...),
		Opts:     opts,
	}

	a.stubs.mu.Lock()
	a.stubs.calls = append(a.stubs.calls, call)
	r, ok := a.stubs.responders[a.id]
	a.stubs.mu.Unlock()

	if !ok {
		return nil, &llm.ProviderHTTPError{Provider: a.id, Status: 503}
	}
	return r(ctx, call)
}

// Env returns a LookupEnv function over a fixed map.
func Env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}
