package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/sitesmith/pkg/llm"
	"github.com/papercomputeco/sitesmith/pkg/llm/provider/openai"
)

var _ = Describe("OpenAI-compatible Provider", func() {
	var (
		server   *httptest.Server
		handler  http.HandlerFunc
		captured map[string]any
		authHdr  string
		path     string
		conv     llm.Conversation
		opts     llm.GenerateOptions
	)

	BeforeEach(func() {
		captured = nil
		authHdr = ""
		path = ""
		handler = nil
		conv = llm.Conversation{
			llm.NewTextMessage(llm.RoleSystem, "You build websites."),
			llm.NewTextMessage(llm.RoleUser, "Make a landing page"),
		}
		opts = llm.GenerateOptions{MaxTokens: 1000, Temperature: 0.5}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			authHdr = r.Header.Get("Authorization")
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &captured)
			handler(w, r)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	respond := func(status int, body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}
	}

	Describe("Name", func() {
		It("returns the registry id it was created with", func() {
			Expect(openai.New("groq", server.URL, "k").Name()).To(Equal("groq"))
		})
	})

	Describe("Generate", func() {
		It("posts the conversation to /chat/completions with a bearer token", func() {
			handler = respond(http.StatusOK, `{
				"id": "chatcmpl-1",
				"model": "gpt-4o-2024-08-06",
				"choices": [{"index": 0, "message": {"role": "assistant", "content": "<html></html>"}, "finish_reason": "stop"}],
				"usage": {"prompt_tokens": 12, "completion_tokens": 30, "total_tokens": 42}
			}`)

			p := openai.New("openai", server.URL+"/", "sk-test")
			gen, err := p.Generate(context.Background(), "gpt-4o", conv, opts)
			Expect(err).NotTo(HaveOccurred())

			Expect(path).To(Equal("/chat/completions"))
			Expect(authHdr).To(Equal("Bearer sk-test"))
			Expect(captured["model"]).To(Equal("gpt-4o"))
			Expect(captured["max_tokens"]).To(BeEquivalentTo(1000))
			Expect(captured["temperature"]).To(BeEquivalentTo(0.5))
			Expect(captured["stream"]).To(BeFalse())

			messages, ok := captured["messages"].([]any)
			Expect(ok).To(BeTrue())
			Expect(messages).To(HaveLen(2))
			Expect(messages[0]).To(HaveKeyWithValue("role", "system"))
			Expect(messages[1]).To(HaveKeyWithValue("content", "Make a landing page"))

			Expect(gen.Text).To(Equal("<html></html>"))
			Expect(gen.TokensUsed).To(Equal(42))
			Expect(gen.Model).To(Equal("gpt-4o-2024-08-06"))
		})

		It("reports zero tokens when usage is absent", func() {
			handler = respond(http.StatusOK, `{"choices": [{"message": {"role": "assistant", "content": "ok"}}]}`)

			gen, err := openai.New("xai", server.URL, "k").Generate(context.Background(), "grok-3", conv, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(gen.TokensUsed).To(Equal(0))
		})

		It("flattens array content parts", func() {
			handler = respond(http.StatusOK, `{"choices": [{"message": {"role": "assistant", "content": [
				{"type": "text", "text": "Hello, "},
				{"type": "text", "text": "world"}
			]}}]}`)

			gen, err := openai.New("openrouter", server.URL, "k").Generate(context.Background(), "m", conv, opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(gen.Text).To(Equal("Hello, world"))
		})

		It("returns an AuthError on 401", func() {
			handler = respond(http.StatusUnauthorized, `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`)

			_, err := openai.New("openai", server.URL, "bad").Generate(context.Background(), "gpt-4o", conv, opts)
			var authErr *llm.AuthError
			Expect(errors.As(err, &authErr)).To(BeTrue())
			Expect(authErr.Provider).To(Equal("openai"))
			Expect(authErr.Message).To(Equal("Incorrect API key provided"))
		})

		It("returns an AuthError on 403", func() {
			handler = respond(http.StatusForbidden, `{}`)

			_, err := openai.New("groq", server.URL, "k").Generate(context.Background(), "m", conv, opts)
			var authErr *llm.AuthError
			Expect(errors.As(err, &authErr)).To(BeTrue())
		})

		It("returns a ProviderHTTPError carrying the provider message", func() {
			handler = respond(http.StatusTooManyRequests, `{"error": {"message": "Rate limit reached"}}`)

			_, err := openai.New("groq", server.URL, "k").Generate(context.Background(), "m", conv, opts)
			var httpErr *llm.ProviderHTTPError
			Expect(errors.As(err, &httpErr)).To(BeTrue())
			Expect(httpErr.Status).To(Equal(http.StatusTooManyRequests))
			Expect(httpErr.Message).To(Equal("Rate limit reached"))
			Expect(err.Error()).To(ContainSubstring("status 429"))
		})

		It("falls back to the status text when the error body is not JSON", func() {
			handler = respond(http.StatusBadGateway, `upstream broke`)

			_, err := openai.New("perplexity", server.URL, "k").Generate(context.Background(), "sonar", conv, opts)
			var httpErr *llm.ProviderHTTPError
			Expect(errors.As(err, &httpErr)).To(BeTrue())
			Expect(httpErr.Message).To(BeEmpty())
			Expect(err.Error()).To(ContainSubstring("Bad Gateway"))
		})

		It("returns an EmptyResponseError when there are no choices", func() {
			handler = respond(http.StatusOK, `{"choices": []}`)

			_, err := openai.New("openai", server.URL, "k").Generate(context.Background(), "gpt-4o", conv, opts)
			var emptyErr *llm.EmptyResponseError
			Expect(errors.As(err, &emptyErr)).To(BeTrue())
		})

		It("returns an EmptyResponseError for blank content", func() {
			handler = respond(http.StatusOK, `{"choices": [{"message": {"role": "assistant", "content": "   "}}]}`)

			_, err := openai.New("openai", server.URL, "k").Generate(context.Background(), "gpt-4o", conv, opts)
			var emptyErr *llm.EmptyResponseError
			Expect(errors.As(err, &emptyErr)).To(BeTrue())
		})

		It("returns a MalformedResponseError for an undecodable body", func() {
			handler = respond(http.StatusOK, `not json`)

			_, err := openai.New("openai", server.URL, "k").Generate(context.Background(), "gpt-4o", conv, opts)
			var malformed *llm.MalformedResponseError
			Expect(errors.As(err, &malformed)).To(BeTrue())
		})

		It("returns a NetworkError when the call exceeds its timeout", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(200 * time.Millisecond)
				w.WriteHeader(http.StatusOK)
			}
			opts.Timeout = 20 * time.Millisecond

			_, err := openai.New("openai", server.URL, "k").Generate(context.Background(), "gpt-4o", conv, opts)
			var netErr *llm.NetworkError
			Expect(errors.As(err, &netErr)).To(BeTrue())
			Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		})

		It("propagates caller cancellation", func() {
			handler = respond(http.StatusOK, `{}`)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := openai.New("openai", server.URL, "k").Generate(ctx, "gpt-4o", conv, opts)
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})

		It("rejects a missing key without calling the provider", func() {
			handler = respond(http.StatusOK, `{}`)

			_, err := openai.New("openai", server.URL, "").Generate(context.Background(), "gpt-4o", conv, opts)
			var authErr *llm.AuthError
			Expect(errors.As(err, &authErr)).To(BeTrue())
			Expect(path).To(BeEmpty())
		})
	})
})
