package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mendellabsco/mendel/pkg/llm"
	"github.com/mendellabsco/mendel/pkg/llm/provider/openai"
)

func completion(text string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": text}},
		},
	}
}

var _ = Describe("Client", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
		client  *openai.Client
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		DeferCleanup(server.Close)

		var err error
		client, err = openai.NewClient(openai.ClientConfig{
			BaseURL: server.URL,
			APIKey:  "sk-test",
			Model:   "gpt-4o-mini",
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewClient", func() {
		It("fails with ErrAuthentication when no API key is configured", func() {
			_, err := openai.NewClient(openai.ClientConfig{})
			Expect(err).To(MatchError(llm.ErrAuthentication))
		})
	})

	Describe("Generate", func() {
		It("sends the conversation with a bearer token and returns the completion", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/v1/chat/completions"))
				Expect(r.Header.Get("Authorization")).To(Equal("Bearer sk-test"))

				var req struct {
					Model    string     `json:"model"`
					Messages []llm.Turn `json:"messages"`
				}
				Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
				Expect(req.Model).To(Equal("gpt-4o-mini"))
				Expect(req.Messages).To(Equal([]llm.Turn{
					{Role: llm.RoleSystem, Content: "You are a genetics tutor."},
					{Role: llm.RoleUser, Content: "What is a phenotype?"},
				}))

				json.NewEncoder(w).Encode(completion("The observable traits of an organism."))
			}

			answer, err := client.Generate(ctx, []llm.Turn{
				{Role: llm.RoleSystem, Content: "You are a genetics tutor."},
				{Role: llm.RoleUser, Content: "What is a phenotype?"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(answer).To(Equal("The observable traits of an organism."))
		})

		It("maps 401 to ErrAuthentication", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"message": "Incorrect API key provided"},
				})
			}

			_, err := client.Generate(ctx, []llm.Turn{{Role: llm.RoleUser, Content: "q"}})
			Expect(err).To(MatchError(llm.ErrAuthentication))
			Expect(err.Error()).To(ContainSubstring("Incorrect API key"))
		})

		It("retries 429 responses before giving up with ErrRateLimited", func() {
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

		It("maps 503 to ErrService", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			}

			_, err := client.Generate(ctx, []llm.Turn{{Role: llm.RoleUser, Content: "q"}})
			Expect(err).To(MatchError(llm.ErrService))
		})

		It("maps an empty choices array to ErrService", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"choices": []map[string]any{}})
			}

			_, err := client.Generate(ctx, []llm.Turn{{Role: llm.RoleUser, Content: "q"}})
			Expect(err).To(MatchError(llm.ErrService))
		})
	})
})
