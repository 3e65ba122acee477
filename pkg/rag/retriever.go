// Package rag ties retrieval, prompt assembly, and generation into the
// question answering pipeline.
package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mendellabsco/mendel/pkg/embeddings"
	"github.com/mendellabsco/mendel/pkg/vector"
)

// DefaultTopK is how many chunks Retrieve returns when unconfigured.
const DefaultTopK = 5

// Retriever embeds a question and finds the most relevant corpus chunks.
type Retriever struct {
	driver   vector.Driver
	embedder embeddings.Embedder
	topK     int
	logger   *slog.Logger
}

// NewRetriever creates a Retriever. topK defaults to DefaultTopK when zero
// or negative.
func NewRetriever(driver vector.Driver, embedder embeddings.Embedder, topK int, logger *slog.Logger) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		driver:   driver,
		embedder: embedder,
		topK:     topK,
		logger:   logger,
	}
}

// Retrieve returns up to the configured topK chunks most similar to the
// question, best first.
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]vector.QueryResult, error) {
	return r.RetrieveK(ctx, question, r.topK)
}

// RetrieveK is Retrieve with an explicit result count. An empty store fails
// with vector.ErrEmptyStore before any embedding work.
func (r *Retriever) RetrieveK(ctx context.Context, question string, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = r.topK
	}

	count, err := r.driver.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking store: %w", err)
	}
	if count == 0 {
		return nil, vector.ErrEmptyStore
	}

	embedding, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	results, err := r.driver.Query(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("querying store: %w", err)
	}

	r.logger.Debug("retrieved context", "chunks", len(results), "top_k", topK)

	return results, nil
}
