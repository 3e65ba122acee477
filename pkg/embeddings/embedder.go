// Package embeddings
package embeddings

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the embedding backend could not be reached or
// refused the request.
var ErrUnavailable = errors.New("embedding model unavailable")

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts a batch of texts into vector embeddings.
	// The result preserves input order: result[i] embeds texts[i].
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}
