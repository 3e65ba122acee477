package qdrantstore_test

import (
	"context"
	"fmt"
	"os"
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mendellabsco/mendel/pkg/logger"
	"github.com/mendellabsco/mendel/pkg/vector"
	"github.com/mendellabsco/mendel/pkg/vector/qdrantstore"
)

// qdrantHost returns the Qdrant host from the environment or skips the test.
func qdrantHost() (string, int) {
	host := os.Getenv("MENDEL_TEST_QDRANT_HOST")
	if host == "" {
		Skip("MENDEL_TEST_QDRANT_HOST not set, skipping Qdrant tests")
	}
	port := 6334
	if p := os.Getenv("MENDEL_TEST_QDRANT_PORT"); p != "" {
		parsed, err := strconv.Atoi(p)
		Expect(err).NotTo(HaveOccurred())
		port = parsed
	}
	return host, port
}

var _ = Describe("Qdrantstore Driver", func() {
	var (
		driver *qdrantstore.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		host, port := qdrantHost()

		var err error
		driver, err = qdrantstore.NewDriver(ctx, qdrantstore.Config{
			Host:       host,
			Port:       port,
			Collection: "mendel_test",
			Dimensions: 3,
		}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())

		// Isolate each test from leftover points.
		Expect(driver.Reset(ctx)).To(Succeed())
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
		}
	})

	record := func(doc string, ordinal int, text string, embedding []float32) vector.Record {
		return vector.Record{
			ID:         fmt.Sprintf("%s:%d", doc, ordinal),
			DocumentID: doc,
			Ordinal:    ordinal,
			Text:       text,
			Embedding:  embedding,
		}
	}

	Describe("Add and Count", func() {
		It("stores records", func() {
			err := driver.Add(ctx, []vector.Record{
				record("mendel.txt", 0, "dominant traits", []float32{1, 0, 0}),
				record("mendel.txt", 1, "recessive traits", []float32{0, 1, 0}),
			})
			Expect(err).NotTo(HaveOccurred())

			count, err := driver.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))
		})

		It("rejects embeddings with the wrong dimensions", func() {
			err := driver.Add(ctx, []vector.Record{
				record("mendel.txt", 0, "dominant traits", []float32{1, 0}),
			})
			Expect(err).To(MatchError(vector.ErrDimensionMismatch))
		})
	})

	Describe("Query", func() {
		BeforeEach(func() {
			err := driver.Add(ctx, []vector.Record{
				record("alleles.txt", 0, "alleles are gene variants", []float32{1, 0, 0}),
				record("alleles.txt", 1, "heterozygous pairs differ", []float32{0, 1, 0}),
				record("meiosis.txt", 0, "meiosis halves chromosomes", []float32{0, 0, 1}),
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns the most similar records first with metadata", func() {
			results, err := driver.Query(ctx, []float32{0.9, 0.1, 0}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("alleles.txt:0"))
			Expect(results[0].DocumentID).To(Equal("alleles.txt"))
			Expect(results[0].Ordinal).To(Equal(0))
			Expect(results[0].Text).To(Equal("alleles are gene variants"))
			Expect(results[0].Score).To(BeNumerically(">", results[1].Score))
		})
	})

	Describe("Reset", func() {
		It("empties the collection and allows re-ingestion", func() {
			records := []vector.Record{
				record("mendel.txt", 0, "dominant traits", []float32{1, 0, 0}),
			}
			Expect(driver.Add(ctx, records)).To(Succeed())
			Expect(driver.Reset(ctx)).To(Succeed())

			count, err := driver.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())

			Expect(driver.Add(ctx, records)).To(Succeed())

			count, err = driver.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})
	})
})
