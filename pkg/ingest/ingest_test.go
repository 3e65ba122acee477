package ingest_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mendellabsco/mendel/pkg/corpus"
	"github.com/mendellabsco/mendel/pkg/ingest"
	"github.com/mendellabsco/mendel/pkg/logger"
	testutils "github.com/mendellabsco/mendel/pkg/utils/test"
)

var _ = Describe("Ingester", func() {
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

	newIngester := func(cfg ingest.Config) *ingest.Ingester {
		ing, err := ingest.NewIngester(driver, embedder, cfg, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		return ing
	}

	Describe("NewIngester", func() {
		It("rejects invalid chunking settings", func() {
			_, err := ingest.NewIngester(driver, embedder, ingest.Config{
				ChunkSize: 10,
				Overlap:   10,
			}, logger.Nop())
			Expect(err).To(MatchError(corpus.ErrInvalidChunking))
		})
	})

	Describe("Run", func() {
		It("chunks, embeds, and stores every document", func() {
			ing := newIngester(ingest.Config{ChunkSize: 10, Overlap: 2})

			result, err := ing.Run(ctx, []corpus.Document{
				{ID: "alleles.txt", Text: strings.Repeat("a", 25)},
				{ID: "meiosis.txt", Text: "short"},
			}, nil)
			Expect(err).NotTo(HaveOccurred())

			// 25 runes at size 10 step 8 gives 4 chunks, plus one short doc.
			Expect(result.Documents).To(Equal(2))
			Expect(result.Chunks).To(Equal(5))
			Expect(driver.Records).To(HaveLen(5))

			Expect(driver.Records[0].ID).To(Equal("alleles.txt:0"))
			Expect(driver.Records[0].DocumentID).To(Equal("alleles.txt"))
			Expect(driver.Records[0].Ordinal).To(Equal(0))
			Expect(driver.Records[0].Embedding).To(HaveLen(3))
			Expect(driver.Records[4].ID).To(Equal("meiosis.txt:0"))
		})

		It("resets the store before loading", func() {
			ing := newIngester(ingest.Config{ChunkSize: 10, Overlap: 0})

			docs := []corpus.Document{{ID: "mendel.txt", Text: "peas"}}

			_, err := ing.Run(ctx, docs, nil)
			Expect(err).NotTo(HaveOccurred())
			_, err = ing.Run(ctx, docs, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(driver.Resets).To(Equal(2))
			Expect(driver.Records).To(HaveLen(1))
		})

		It("reports monotonic progress up to the chunk total", func() {
			ing := newIngester(ingest.Config{ChunkSize: 5, Overlap: 0, BatchSize: 2})

			var updates []ingest.Progress
			_, err := ing.Run(ctx, []corpus.Document{
				{ID: "mendel.txt", Text: strings.Repeat("x", 25)},
			}, func(p ingest.Progress) {
				updates = append(updates, p)
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(updates).To(HaveLen(3))
			Expect(updates[0].ChunksDone).To(Equal(2))
			Expect(updates[1].ChunksDone).To(Equal(4))
			Expect(updates[2].ChunksDone).To(Equal(5))
			for _, u := range updates {
				Expect(u.ChunksTotal).To(Equal(5))
				Expect(u.Documents).To(Equal(1))
			}
		})

		It("aborts when embedding fails", func() {
			embedder.FailOn = "bad chunk"
			ing := newIngester(ingest.Config{ChunkSize: 100, Overlap: 0})

			_, err := ing.Run(ctx, []corpus.Document{
				{ID: "mendel.txt", Text: "bad chunk"},
			}, nil)
			Expect(err).To(HaveOccurred())
			Expect(driver.Records).To(BeEmpty())
		})

		It("handles an empty corpus", func() {
			ing := newIngester(ingest.Config{ChunkSize: 10, Overlap: 0})

			result, err := ing.Run(ctx, nil, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Documents).To(BeZero())
			Expect(result.Chunks).To(BeZero())
			Expect(driver.Resets).To(Equal(1))
		})
	})
})
