package credentials

import (
	"os"
	"strings"

	"github.com/papercomputeco/sitesmith/pkg/llm/provider"
)

// Resolver answers credential and model lookups for the provider registry.
// The process environment wins; credentials.toml is consulted for anything
// the environment leaves unset. Stored values are snapshotted at construction.
type Resolver struct {
	lookupEnv func(string) (string, bool)
	stored    map[string]ProviderCredential
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLookupEnv replaces os.LookupEnv, primarily for tests.
func WithLookupEnv(fn func(string) (string, bool)) ResolverOption {
	return func(r *Resolver) {
		r.lookupEnv = fn
	}
}

// WithStored seeds the resolver with credentials loaded from credentials.toml.
func WithStored(creds *Credentials) ResolverOption {
	return func(r *Resolver) {
		if creds != nil {
			r.stored = creds.Providers
		}
	}
}

// NewResolver creates a Resolver backed by the process environment.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// APIKey returns the credential for cfg, or "" when none is configured.
func (r *Resolver) APIKey(cfg provider.Config) string {
	if v := r.env(cfg.KeyEnv); v != "" {
		return v
	}
	return strings.TrimSpace(r.stored[cfg.ID].APIKey)
}

// Model returns the model override for cfg, or "" when none is configured.
func (r *Resolver) Model(cfg provider.Config) string {
	if v := r.env(cfg.ModelEnv); v != "" {
		return v
	}
	return strings.TrimSpace(r.stored[cfg.ID].Model)
}

func (r *Resolver) env(name string) string {
	if name == "" {
		return ""
	}
	v, ok := r.lookupEnv(name)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}
