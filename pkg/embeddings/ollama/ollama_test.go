package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mendellabsco/mendel/pkg/embeddings"
	"github.com/mendellabsco/mendel/pkg/embeddings/ollama"
)

var _ = Describe("Embedder", func() {
	var (
		server   *httptest.Server
		handler  http.HandlerFunc
		embedder *ollama.Embedder
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		DeferCleanup(server.Close)

		var err error
		embedder, err = ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: server.URL,
			Model:   "nomic-embed-text",
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Embed", func() {
		It("sends the model and text and returns the embedding", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/api/embed"))
				Expect(r.Method).To(Equal(http.MethodPost))

				var req map[string]any
				Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
				Expect(req["model"]).To(Equal("nomic-embed-text"))
				Expect(req["input"]).To(Equal("what is an allele"))

				json.NewEncoder(w).Encode(map[string]any{
					"embeddings": [][]float32{{0.1, 0.2, 0.3}},
				})
			}

			embedding, err := embedder.Embed(ctx, "what is an allele")
			Expect(err).NotTo(HaveOccurred())
			Expect(embedding).To(Equal([]float32{0.1, 0.2, 0.3}))
		})

		It("maps non-200 responses to ErrUnavailable", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not found", http.StatusNotFound)
			}

			_, err := embedder.Embed(ctx, "text")
			Expect(err).To(MatchError(embeddings.ErrUnavailable))
		})

		It("maps connection failures to ErrUnavailable", func() {
			server.Close()

			_, err := embedder.Embed(ctx, "text")
			Expect(err).To(MatchError(embeddings.ErrUnavailable))
		})

		It("maps an empty embeddings array to ErrUnavailable", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{}})
			}

			_, err := embedder.Embed(ctx, "text")
			Expect(err).To(MatchError(embeddings.ErrUnavailable))
		})
	})

	Describe("EmbedBatch", func() {
		It("sends all texts in one request and preserves order", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				var req struct {
					Input []string `json:"input"`
				}
				Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
				Expect(req.Input).To(Equal([]string{"first", "second"}))

				json.NewEncoder(w).Encode(map[string]any{
					"embeddings": [][]float32{{1, 0}, {0, 1}},
				})
			}

			vectors, err := embedder.EmbedBatch(ctx, []string{"first", "second"})
			Expect(err).NotTo(HaveOccurred())
			Expect(vectors).To(Equal([][]float32{{1, 0}, {0, 1}}))
		})

		It("returns nothing for an empty batch without calling the API", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Fail("unexpected request")
			}

			vectors, err := embedder.EmbedBatch(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(vectors).To(BeEmpty())
		})

		It("errors when the response count does not match the batch", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]any{
					"embeddings": [][]float32{{1, 0}},
				})
			}

			_, err := embedder.EmbedBatch(ctx, []string{"first", "second"})
			Expect(err).To(MatchError(embeddings.ErrUnavailable))
		})
	})
})
