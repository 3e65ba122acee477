// Package ingest rebuilds the vector store from a plain text corpus.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mendellabsco/mendel/pkg/corpus"
	"github.com/mendellabsco/mendel/pkg/embeddings"
	"github.com/mendellabsco/mendel/pkg/vector"
)

// DefaultBatchSize is how many chunks are embedded per request.
const DefaultBatchSize = 16

// Progress reports ingestion advancement after each embedded batch.
type Progress struct {
	// Documents is the number of documents in the corpus.
	Documents int

	// ChunksDone is the number of chunks embedded and stored so far.
	ChunksDone int

	// ChunksTotal is the total number of chunks to process.
	ChunksTotal int
}

// ProgressFunc receives progress updates during Run. May be nil.
type ProgressFunc func(Progress)

// Result summarizes a completed ingestion.
type Result struct {
	// Documents is the number of documents processed.
	Documents int

	// Chunks is the number of chunks embedded and stored.
	Chunks int
}

// Ingester chunks documents, embeds them, and loads the vector store.
type Ingester struct {
	driver    vector.Driver
	embedder  embeddings.Embedder
	chunkSize int
	overlap   int
	batchSize int
	logger    *slog.Logger
}

// Config holds configuration for an Ingester.
type Config struct {
	// ChunkSize is the maximum chunk length in runes.
	ChunkSize int

	// Overlap is how many runes consecutive chunks share.
	Overlap int

	// BatchSize is how many chunks are embedded per request.
	// Defaults to DefaultBatchSize if zero.
	BatchSize int
}

// NewIngester creates an Ingester. Chunking settings are validated up front
// so misconfiguration fails before any store mutation.
func NewIngester(driver vector.Driver, embedder embeddings.Embedder, cfg Config, logger *slog.Logger) (*Ingester, error) {
	// Validate by splitting a probe text with the configured settings.
	if _, err := corpus.Split("probe", cfg.ChunkSize, cfg.Overlap); err != nil {
		return nil, err
	}

	batchSize := cfg.BatchSize
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}

	return &Ingester{
		driver:    driver,
		embedder:  embedder,
		chunkSize: cfg.ChunkSize,
		overlap:   cfg.Overlap,
		batchSize: batchSize,
		logger:    logger,
	}, nil
}

// Run rebuilds the store from docs. The store is reset first, so a
// successful Run is a full rebuild and running twice on the same corpus
// yields the same store. Any embedding or storage failure aborts the run.
func (i *Ingester) Run(ctx context.Context, docs []corpus.Document, progress ProgressFunc) (*Result, error) {
	var chunks []corpus.Chunk
	for _, doc := range docs {
		docChunks, err := corpus.SplitDocument(doc, i.chunkSize, i.overlap)
		if err != nil {
			return nil, fmt.Errorf("chunking %s: %w", doc.ID, err)
		}
		chunks = append(chunks, docChunks...)
	}

	i.logger.Info("starting ingestion",
		"documents", len(docs),
		"chunks", len(chunks),
		"chunk_size", i.chunkSize,
		"overlap", i.overlap,
	)

	if err := i.driver.Reset(ctx); err != nil {
		return nil, fmt.Errorf("resetting vector store: %w", err)
	}

	done := 0
	for start := 0; start < len(chunks); start += i.batchSize {
		end := start + i.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.Text
		}

		vectors, err := i.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding batch: %w", err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(batch))
		}

		records := make([]vector.Record, len(batch))
		for j, c := range batch {
			records[j] = vector.Record{
				ID:         c.ChunkID(),
				DocumentID: c.DocumentID,
				Ordinal:    c.Ordinal,
				Text:       c.Text,
				Embedding:  vectors[j],
			}
		}

		if err := i.driver.Add(ctx, records); err != nil {
			return nil, fmt.Errorf("storing batch: %w", err)
		}

		done += len(batch)
		if progress != nil {
			progress(Progress{
				Documents:   len(docs),
				ChunksDone:  done,
				ChunksTotal: len(chunks),
			})
		}
	}

	i.logger.Info("ingestion complete", "documents", len(docs), "chunks", done)

	return &Result{
		Documents: len(docs),
		Chunks:    done,
	}, nil
}
