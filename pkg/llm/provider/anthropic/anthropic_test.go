package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mendellabsco/mendel/pkg/llm"
	"github.com/mendellabsco/mendel/pkg/llm/provider/anthropic"
)

func textCompletion(text string) map[string]any {
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
	}
}

var _ = Describe("Client", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
		client  *anthropic.Client
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		DeferCleanup(server.Close)

		var err error
		client, err = anthropic.NewClient(anthropic.ClientConfig{
			BaseURL:   server.URL,
			APIKey:    "sk-test",
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 1024,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewClient", func() {
		It("fails with ErrAuthentication when no API key is configured", func() {
			_, err := anthropic.NewClient(anthropic.ClientConfig{})
			Expect(err).To(MatchError(llm.ErrAuthentication))
		})

		It("fails for a whitespace-only API key", func() {
			_, err := anthropic.NewClient(anthropic.ClientConfig{APIKey: "  "})
			Expect(err).To(MatchError(llm.ErrAuthentication))
		})
	})

	Describe("Generate", func() {
		It("sends the conversation with auth headers and returns the completion", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/v1/messages"))
				Expect(r.Header.Get("x-api-key")).To(Equal("sk-test"))
				Expect(r.Header.Get("anthropic-version")).NotTo(BeEmpty())

				var req struct {
					Model     string     `json:"model"`
					MaxTokens int        `json:"max_tokens"`
					Messages  []llm.Turn `json:"messages"`
				}
				Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
				Expect(req.Model).To(Equal("claude-sonnet-4-20250514"))
				Expect(req.MaxTokens).To(Equal(1024))
				Expect(req.Messages).To(Equal([]llm.Turn{
					{Role: llm.RoleUser, Content: "What is a genotype?"},
				}))

				json.NewEncoder(w).Encode(textCompletion("A genotype is the genetic makeup of an organism."))
			}

			answer, err := client.Generate(ctx, []llm.Turn{
				{Role: llm.RoleUser, Content: "What is a genotype?"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(answer).To(Equal("A genotype is the genetic makeup of an organism."))
		})

		It("folds system turns into the top-level system field", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				var req struct {
					System   string     `json:"system"`
					Messages []llm.Turn `json:"messages"`
				}
				Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
				Expect(req.System).To(Equal("You are a genetics tutor."))
				Expect(req.Messages).To(HaveLen(1))
				Expect(req.Messages[0].Role).To(Equal(llm.RoleUser))

				json.NewEncoder(w).Encode(textCompletion("ok"))
			}

			_, err := client.Generate(ctx, []llm.Turn{
				{Role: llm.RoleSystem, Content: "You are a genetics tutor."},
				{Role: llm.RoleUser, Content: "hello"},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("concatenates multiple text blocks", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"content": []map[string]any{
						{"type": "text", "text": "first "},
						{"type": "text", "text": "second"},
					},
				})
			}

			answer, err := client.Generate(ctx, []llm.Turn{{Role: llm.RoleUser, Content: "q"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(answer).To(Equal("first second"))
		})

		It("maps 401 to ErrAuthentication without retrying", func() {
			var calls atomic.Int32
			handler = func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"type": "authentication_error", "message": "invalid x-api-key"},
				})
			}

			_, err := client.Generate(ctx, []llm.Turn{{Role: llm.RoleUser, Content: "q"}})
			Expect(err).To(MatchError(llm.ErrAuthentication))
			Expect(err.Error()).To(ContainSubstring("invalid x-api-key"))
			Expect(calls.Load()).To(Equal(int32(1)))
		})

		It("retries 429 responses and succeeds when the throttle clears", func() {
			var calls atomic.Int32
			handler = func(w http.ResponseWriter, r *http.Request) {
				if calls.Add(1) <= 2 {
					w.Header().Set("Retry-After", "0")
					w.WriteHeader(http.StatusTooManyRequests)
					return
				}
				json.NewEncoder(w).Encode(textCompletion("ok"))
			}

			answer, err := client.Generate(ctx, []llm.Turn{{Role: llm.RoleUser, Content: "q"}})
			Expect(err).NotTo(HaveOccurred())
			Expect(answer).To(Equal("ok"))
			Expect(calls.Load()).To(Equal(int32(3)))
		})

		It("returns ErrRateLimited when every retry is throttled", func() {
			var calls atomic.Int32
			handler = func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Retry-After", "0")
				w.WriteHeader(http.StatusTooManyRequests)
			}

			_, err := client.Generate(ctx, []llm.Turn{{Role: llm.RoleUser, Content: "q"}})
			Expect(err).To(MatchError(llm.ErrRateLimited))
			Expect(calls.Load()).To(Equal(int32(llm.MaxRateLimitRetries + 1)))
		})

		It("maps 500 to ErrService without retrying", func() {
			var calls atomic.Int32
			handler = func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				http.Error(w, "overloaded", http.StatusInternalServerError)
			}

			_, err := client.Generate(ctx, []llm.Turn{{Role: llm.RoleUser, Content: "q"}})
			Expect(err).To(MatchError(llm.ErrService))
			Expect(calls.Load()).To(Equal(int32(1)))
		})

		It("maps connection failures to ErrService", func() {
			server.Close()

			_, err := client.Generate(ctx, []llm.Turn{{Role: llm.RoleUser, Content: "q"}})
			Expect(err).To(MatchError(llm.ErrService))
		})

		It("maps an empty completion to ErrService", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"content": []map[string]any{}})
			}

			_, err := client.Generate(ctx, []llm.Turn{{Role: llm.RoleUser, Content: "q"}})
			Expect(err).To(MatchError(llm.ErrService))
		})
	})
})
