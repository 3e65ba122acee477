package pipeline_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/mendellabsco/mendel/cmd/mendel/pipeline"
	"github.com/mendellabsco/mendel/pkg/llm"
)

var _ = Describe("FromViper", func() {
	It("reads every setting by its dotted key", func() {
		v := viper.New()
		v.Set("corpus.dir", "textbooks")
		v.Set("chunking.size", 800)
		v.Set("chunking.overlap", 100)
		v.Set("vector_store.provider", "chromem")
		v.Set("embedding.dimensions", 384)
		v.Set("llm.provider", "openai")
		v.Set("retrieval.top_k", 7)

		s := pipeline.FromViper(v)
		Expect(s.CorpusDir).To(Equal("textbooks"))
		Expect(s.ChunkSize).To(Equal(800))
		Expect(s.ChunkOverlap).To(Equal(100))
		Expect(s.StoreProvider).To(Equal("chromem"))
		Expect(s.EmbeddingDims).To(Equal(uint(384)))
		Expect(s.LLMProvider).To(Equal("openai"))
		Expect(s.TopK).To(Equal(7))
	})
})

var _ = Describe("ResolveStoreTarget", func() {
	It("keeps an explicit target", func() {
		target, err := pipeline.ResolveStoreTarget("", pipeline.Settings{
			StoreProvider: "sqlite",
			StoreTarget:   "/tmp/custom.db",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(target).To(Equal("/tmp/custom.db"))
	})

	It("defaults sqlite to a database inside the config dir", func() {
		dir := GinkgoT().TempDir()

		target, err := pipeline.ResolveStoreTarget(dir, pipeline.Settings{StoreProvider: "sqlite"})
		Expect(err).NotTo(HaveOccurred())
		Expect(target).To(Equal(filepath.Join(dir, "mendel.db")))
	})

	It("defaults chromem to a directory inside the config dir", func() {
		dir := GinkgoT().TempDir()

		target, err := pipeline.ResolveStoreTarget(dir, pipeline.Settings{StoreProvider: "chromem"})
		Expect(err).NotTo(HaveOccurred())
		Expect(target).To(Equal(filepath.Join(dir, "chromem")))
	})

	It("defaults qdrant to the local gRPC port", func() {
		target, err := pipeline.ResolveStoreTarget("", pipeline.Settings{StoreProvider: "qdrant"})
		Expect(err).NotTo(HaveOccurred())
		Expect(target).To(Equal("localhost:6334"))
	})

	It("requires an explicit DSN for pgvector", func() {
		_, err := pipeline.ResolveStoreTarget("", pipeline.Settings{StoreProvider: "pgvector"})
		Expect(err).To(HaveOccurred())
	})

	It("rejects unknown providers", func() {
		_, err := pipeline.ResolveStoreTarget("", pipeline.Settings{StoreProvider: "faiss"})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("NewGenerator", func() {
	It("fails fast with a credential error when no key is available", func() {
		GinkgoT().Setenv("ANTHROPIC_API_KEY", "")
		dir := GinkgoT().TempDir()

		_, err := pipeline.NewGenerator(dir, pipeline.Settings{
			LLMProvider: "anthropic",
			LLMModel:    "claude-sonnet-4-20250514",
		})
		Expect(err).To(MatchError(llm.ErrAuthentication))
	})

	It("builds an ollama generator without any credential", func() {
		dir := GinkgoT().TempDir()

		gen, err := pipeline.NewGenerator(dir, pipeline.Settings{
			LLMProvider: "ollama",
			LLMTarget:   "http://localhost:11434",
			LLMModel:    "llama3",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(gen.Close()).To(Succeed())
	})
})
