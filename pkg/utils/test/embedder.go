package testutils

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/mendellabsco/mendel/pkg/embeddings"
)

// MockEmbedder is a test embedder that returns predictable embeddings
type MockEmbedder struct {
	Embeddings map[string][]float32

	// Dimensions sets the width of generated default embeddings.
	Dimensions int

	// FailOn causes Embed to return an error when the input text matches
	FailOn string

	// Calls records every embedded text in order.
	Calls []string
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
		Dimensions: 3,
	}
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.FailOn != "" && text == m.FailOn {
		return nil, fmt.Errorf("%w: mock embedding failure for: %s", embeddings.ErrUnavailable, text)
	}

	m.Calls = append(m.Calls, text)

	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}

	// Derive a deterministic embedding from the text so distinct inputs
	// get distinct vectors.
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	emb := make([]float32, m.Dimensions)
	for i := range emb {
		seed = seed*1664525 + 1013904223
		emb[i] = float32(seed%1000) / 1000
	}
	return emb, nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		emb, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, emb)
	}
	return vectors, nil
}

func (m *MockEmbedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*MockEmbedder)(nil)
