package rag_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mendellabsco/mendel/pkg/logger"
	"github.com/mendellabsco/mendel/pkg/rag"
	testutils "github.com/mendellabsco/mendel/pkg/utils/test"
	"github.com/mendellabsco/mendel/pkg/vector"
)

var _ = Describe("Retriever", func() {
	var (
		driver   *testutils.MockDriver
		embedder *testutils.MockEmbedder
		ctx      context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = testutils.NewMockDriver()
		embedder = testutils.NewMockEmbedder()
	})

	seed := func() {
		driver.Records = []vector.Record{
			{ID: "alleles.txt:0", DocumentID: "alleles.txt", Ordinal: 0, Text: "alleles are gene variants", Embedding: []float32{1, 0, 0}},
			{ID: "alleles.txt:1", DocumentID: "alleles.txt", Ordinal: 1, Text: "heterozygous pairs differ", Embedding: []float32{0, 1, 0}},
			{ID: "meiosis.txt:0", DocumentID: "meiosis.txt", Ordinal: 0, Text: "meiosis halves chromosomes", Embedding: []float32{0, 0, 1}},
		}
	}

	It("fails with ErrEmptyStore before embedding when nothing is ingested", func() {
		retriever := rag.NewRetriever(driver, embedder, 5, logger.Nop())

		_, err := retriever.Retrieve(ctx, "what is an allele")
		Expect(err).To(MatchError(vector.ErrEmptyStore))
		Expect(embedder.Calls).To(BeEmpty())
	})

	It("returns the most similar chunks best first", func() {
		seed()
		embedder.Embeddings["what is an allele"] = []float32{1, 0.1, 0}
		retriever := rag.NewRetriever(driver, embedder, 2, logger.Nop())

		results, err := retriever.Retrieve(ctx, "what is an allele")
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(2))
		Expect(results[0].ID).To(Equal("alleles.txt:0"))
		Expect(results[0].Score).To(BeNumerically(">=", results[1].Score))
	})

	It("defaults topK when unconfigured", func() {
		seed()
		retriever := rag.NewRetriever(driver, embedder, 0, logger.Nop())

		results, err := retriever.Retrieve(ctx, "genetics")
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
	})

	It("propagates embedding failures", func() {
		seed()
		embedder.FailOn = "broken"
		retriever := rag.NewRetriever(driver, embedder, 5, logger.Nop())

		_, err := retriever.Retrieve(ctx, "broken")
		Expect(err).To(HaveOccurred())
	})
})
