package provider

import (
	"fmt"
	"strings"
)

// UnknownProviderError is returned by Lookup for an id not in the registry.
type UnknownProviderError struct {
	ID string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider: %q", e.ID)
}

// Registry is a read-only, ordered catalog of provider configs.
// It is safe for concurrent use once constructed.
type Registry struct {
	ordered []Config
	byID    map[string]int
}

// NewRegistry builds a registry from configs in declaration order.
// It panics on duplicate ids or an inconsistent default model, since
// both are programming errors in the catalog.
func NewRegistry(configs ...Config) *Registry {
	r := &Registry{
		ordered: make([]Config, 0, len(configs)),
		byID:    make(map[string]int, len(configs)),
	}

	for _, cfg := range configs {
		if err := cfg.validate(); err != nil {
			panic(err)
		}
		if _, dup := r.byID[cfg.ID]; dup {
			panic(fmt.Sprintf("duplicate provider id %q", cfg.ID))
		}
		r.byID[cfg.ID] = len(r.ordered)
		r.ordered = append(r.ordered, cfg)
	}

	return r
}

// Lookup returns the config for id. Matching ignores case and surrounding whitespace.
func (r *Registry) Lookup(id string) (Config, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	idx, ok := r.byID[key]
	if !ok {
		return Config{}, &UnknownProviderError{ID: id}
	}
	return r.ordered[idx], nil
}

// All returns every config in declaration order.
func (r *Registry) All() []Config {
	out := make([]Config, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// IDs returns every provider id in declaration order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.ordered))
	for i, cfg := range r.ordered {
		ids[i] = cfg.ID
	}
	return ids
}

// ListConfigured returns, in declaration order, the configs whose credential
// is present according to src.
func (r *Registry) ListConfigured(src KeySource) []Config {
	var out []Config
	for _, cfg := range r.ordered {
		if src.APIKey(cfg) != "" {
			out = append(out, cfg)
		}
	}
	return out
}
