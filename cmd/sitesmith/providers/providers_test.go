package providerscmder

import (
	"bytes"
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sitesmith/gateway"
	"github.com/papercomputeco/sitesmith/gateway/gatewaytest"
	"github.com/papercomputeco/sitesmith/pkg/credentials"
)

var _ = Describe("providers", func() {
	var (
		out   *bytes.Buffer
		stubs *gatewaytest.Stubs
		cmder *providersCommander
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		stubs = gatewaytest.NewStubs()
		cmder = &providersCommander{
			keys: credentials.NewResolver(credentials.WithLookupEnv(gatewaytest.Env(map[string]string{
				"GROQ_API_KEY": "gsk-test",
				"GROQ_MODEL":   "llama-3.1-8b-instant",
			}))),
			newAdapter: stubs.Factory,
			out:        out,
		}
	})

	It("lists every provider and counts the configured ones", func() {
		Expect(cmder.run(context.Background())).To(Succeed())

		text := out.String()
		for _, id := range []string{"openai", "gemini", "openrouter", "xai", "groq", "perplexity"} {
			Expect(text).To(ContainSubstring(id))
		}
		Expect(text).To(ContainSubstring("llama-3.1-8b-instant *"))
		Expect(text).To(ContainSubstring("1 of 6 configured"))
	})

	It("warns when nothing is configured", func() {
		cmder.keys = credentials.NewResolver(credentials.WithLookupEnv(gatewaytest.Env(nil)))
		Expect(cmder.run(context.Background())).To(Succeed())
		Expect(out.String()).To(ContainSubstring("no provider has a key"))
	})

	It("probes a configured provider", func() {
		stubs.On("groq", gatewaytest.Reply("pong", 1))
		cmder.test = "groq"

		Expect(cmder.run(context.Background())).To(Succeed())
		Expect(out.String()).To(ContainSubstring("pong"))
		Expect(stubs.Calls()).To(HaveLen(1))
		Expect(stubs.Calls()[0].Model).To(Equal("llama-3.1-8b-instant"))
	})

	It("fails the probe for an unconfigured provider", func() {
		cmder.test = "openai"

		err := cmder.run(context.Background())
		Expect(errors.Is(err, gateway.ErrProviderNotConfigured)).To(BeTrue())
		Expect(stubs.Calls()).To(BeEmpty())
	})

	It("reports provider failures", func() {
		stubs.On("groq", gatewaytest.Fail(errors.New("upstream down")))
		cmder.test = "groq"

		Expect(cmder.run(context.Background())).To(MatchError(ContainSubstring("upstream down")))
	})
})
