package corpus_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mendellabsco/mendel/pkg/corpus"
)

var _ = Describe("Split", func() {
	It("returns the whole text when it fits in one chunk", func() {
		chunks, err := corpus.Split("pea plants", 100, 20)
		Expect(err).NotTo(HaveOccurred())
		Expect(chunks).To(Equal([]string{"pea plants"}))
	})

	It("returns nothing for empty text", func() {
		chunks, err := corpus.Split("", 100, 20)
		Expect(err).NotTo(HaveOccurred())
		Expect(chunks).To(BeEmpty())
	})

	It("splits with the configured overlap", func() {
		chunks, err := corpus.Split("abcdefghij", 4, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(chunks).To(Equal([]string{"abcd", "cdef", "efgh", "ghij"}))
	})

	It("ends the final chunk at the end of the text", func() {
		chunks, err := corpus.Split("abcdefghijk", 4, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(chunks[len(chunks)-1]).To(Equal("ijk"))
	})

	It("splits without overlap when overlap is zero", func() {
		chunks, err := corpus.Split("abcdef", 2, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(chunks).To(Equal([]string{"ab", "cd", "ef"}))
	})

	It("counts runes, not bytes", func() {
		chunks, err := corpus.Split("ααββγγ", 2, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(chunks).To(Equal([]string{"αα", "ββ", "γγ"}))
	})

	It("keeps every chunk within the size limit", func() {
		text := strings.Repeat("genotype phenotype ", 100)
		chunks, err := corpus.Split(text, 37, 9)
		Expect(err).NotTo(HaveOccurred())
		for _, c := range chunks {
			Expect(len([]rune(c))).To(BeNumerically("<=", 37))
		}
	})

	It("covers the full text with each step", func() {
		text := strings.Repeat("abcdefghij", 25)
		size, overlap := 40, 15
		chunks, err := corpus.Split(text, size, overlap)
		Expect(err).NotTo(HaveOccurred())

		// Dropping each chunk's leading overlap reconstructs the text.
		var rebuilt strings.Builder
		rebuilt.WriteString(chunks[0])
		for _, c := range chunks[1:] {
			runes := []rune(c)
			if len(runes) > overlap {
				rebuilt.WriteString(string(runes[overlap:]))
			}
		}
		Expect(rebuilt.String()).To(Equal(text))
	})

	DescribeTable("invalid configurations",
		func(size, overlap int) {
			_, err := corpus.Split("abcdef", size, overlap)
			Expect(err).To(MatchError(corpus.ErrInvalidChunking))
		},
		Entry("zero size", 0, 0),
		Entry("negative size", -1, 0),
		Entry("negative overlap", 10, -1),
		Entry("overlap equal to size", 10, 10),
		Entry("overlap larger than size", 10, 12),
	)
})

var _ = Describe("SplitDocument", func() {
	It("assigns sequential ordinals and the document ID", func() {
		doc := corpus.Document{ID: "mendel.txt", Text: "abcdefghij"}

		chunks, err := corpus.SplitDocument(doc, 4, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(chunks).To(HaveLen(4))
		for i, c := range chunks {
			Expect(c.DocumentID).To(Equal("mendel.txt"))
			Expect(c.Ordinal).To(Equal(i))
		}
		Expect(chunks[0].ChunkID()).To(Equal("mendel.txt:0"))
	})

	It("propagates chunking errors", func() {
		doc := corpus.Document{ID: "mendel.txt", Text: "abcdef"}
		_, err := corpus.SplitDocument(doc, 0, 0)
		Expect(err).To(MatchError(corpus.ErrInvalidChunking))
	})
})
