package provider_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sitesmith/pkg/llm"
	"github.com/papercomputeco/sitesmith/pkg/llm/provider"
	"github.com/papercomputeco/sitesmith/pkg/llm/provider/gemini"
	"github.com/papercomputeco/sitesmith/pkg/llm/provider/openai"
)

type mapKeys map[string]string

func (m mapKeys) APIKey(cfg provider.Config) string { return m[cfg.ID] }
func (m mapKeys) Model(provider.Config) string      { return "" }

var _ = Describe("Registry", func() {
	var registry *provider.Registry

	BeforeEach(func() {
		registry = provider.DefaultRegistry()
	})

	Describe("IDs", func() {
		It("lists the built-in providers in fallback order", func() {
			Expect(registry.IDs()).To(Equal([]string{
				"openai", "gemini", "openrouter", "xai", "groq", "perplexity",
			}))
		})
	})

	Describe("Lookup", func() {
		It("returns the config for a known id", func() {
			cfg, err := registry.Lookup("groq")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Name).To(Equal("Groq"))
			Expect(cfg.KeyEnv).To(Equal("GROQ_API_KEY"))
			Expect(cfg.BaseURL).To(Equal("https://api.groq.com/openai/v1"))
		})

		It("ignores case and surrounding whitespace", func() {
			cfg, err := registry.Lookup("  OpenAI ")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.ID).To(Equal("openai"))
		})

		It("returns an UnknownProviderError for an unknown id", func() {
			_, err := registry.Lookup("anthropic")
			var unknown *provider.UnknownProviderError
			Expect(errors.As(err, &unknown)).To(BeTrue())
			Expect(unknown.ID).To(Equal("anthropic"))
		})
	})

	Describe("All", func() {
		It("returns a copy the caller cannot use to mutate the registry", func() {
			all := registry.All()
			all[0].ID = "mutated"
			Expect(registry.IDs()[0]).To(Equal("openai"))
		})

		It("keeps every default model inside its declared model list", func() {
			for _, cfg := range registry.All() {
				if len(cfg.Models) > 0 {
					Expect(cfg.SupportsModel(cfg.DefaultModel)).To(BeTrue(), cfg.ID)
				}
			}
		})
	})

	Describe("ListConfigured", func() {
		It("returns only providers with a credential, in declaration order", func() {
			configured := registry.ListConfigured(mapKeys{"groq": "g", "openai": "o"})
			Expect(configured).To(HaveLen(2))
			Expect(configured[0].ID).To(Equal("openai"))
			Expect(configured[1].ID).To(Equal("groq"))
		})

		It("returns nothing when no credentials are set", func() {
			Expect(registry.ListConfigured(mapKeys{})).To(BeEmpty())
		})
	})

	Describe("NewRegistry", func() {
		It("panics on a duplicate id", func() {
			Expect(func() {
				provider.NewRegistry(
					provider.Config{ID: "a", DefaultModel: "m"},
					provider.Config{ID: "a", DefaultModel: "m"},
				)
			}).To(Panic())
		})

		It("panics when the default model is not declared", func() {
			Expect(func() {
				provider.NewRegistry(provider.Config{ID: "a", DefaultModel: "x", Models: []string{"y"}})
			}).To(Panic())
		})
	})
})

var _ = Describe("New", func() {
	registry := provider.DefaultRegistry()

	It("builds the OpenAI-compatible adapter for http providers", func() {
		cfg, _ := registry.Lookup("xai")
		adapter, err := provider.New(cfg, "key")
		Expect(err).NotTo(HaveOccurred())
		Expect(adapter).To(BeAssignableToTypeOf(&openai.Provider{}))
		Expect(adapter.Name()).To(Equal("xai"))
	})

	It("builds the Gemini adapter for gemini", func() {
		cfg, _ := registry.Lookup("gemini")
		adapter, err := provider.New(cfg, "key")
		Expect(err).NotTo(HaveOccurred())
		Expect(adapter).To(BeAssignableToTypeOf(&gemini.Provider{}))
	})

	It("returns an AuthError naming the variable when the key is empty", func() {
		cfg, _ := registry.Lookup("perplexity")
		_, err := provider.New(cfg, "")
		var authErr *llm.AuthError
		Expect(errors.As(err, &authErr)).To(BeTrue())
		Expect(authErr.Message).To(ContainSubstring("PERPLEXITY_API_KEY"))
	})
})
