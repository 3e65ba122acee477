// Package pipeline assembles the retrieval pipeline shared by the ingest,
// ask, chat, and serve commands from resolved configuration.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mendellabsco/mendel/pkg/credentials"
	"github.com/mendellabsco/mendel/pkg/dotdir"
	"github.com/mendellabsco/mendel/pkg/embeddings"
	embeddingutils "github.com/mendellabsco/mendel/pkg/embeddings/utils"
	"github.com/mendellabsco/mendel/pkg/llm"
	llmutils "github.com/mendellabsco/mendel/pkg/llm/utils"
	"github.com/mendellabsco/mendel/pkg/rag"
	"github.com/mendellabsco/mendel/pkg/vector"
	vectorutils "github.com/mendellabsco/mendel/pkg/vector/utils"
)

// Settings is the flattened pipeline configuration, resolved through viper's
// flag > env > config file > default precedence.
type Settings struct {
	CorpusDir    string
	ChunkSize    int
	ChunkOverlap int

	StoreProvider   string
	StoreTarget     string
	StoreCollection string

	EmbeddingProvider string
	EmbeddingTarget   string
	EmbeddingModel    string
	EmbeddingDims     uint

	LLMProvider  string
	LLMTarget    string
	LLMModel     string
	LLMMaxTokens int

	TopK            int
	MaxContextChars int

	APIListen string
	APITarget string
}

// FromViper reads every pipeline setting out of v.
func FromViper(v *viper.Viper) Settings {
	return Settings{
		CorpusDir:    v.GetString("corpus.dir"),
		ChunkSize:    v.GetInt("chunking.size"),
		ChunkOverlap: v.GetInt("chunking.overlap"),

		StoreProvider:   v.GetString("vector_store.provider"),
		StoreTarget:     v.GetString("vector_store.target"),
		StoreCollection: v.GetString("vector_store.collection"),

		EmbeddingProvider: v.GetString("embedding.provider"),
		EmbeddingTarget:   v.GetString("embedding.target"),
		EmbeddingModel:    v.GetString("embedding.model"),
		EmbeddingDims:     v.GetUint("embedding.dimensions"),

		LLMProvider:  v.GetString("llm.provider"),
		LLMTarget:    v.GetString("llm.target"),
		LLMModel:     v.GetString("llm.model"),
		LLMMaxTokens: v.GetInt("llm.max_tokens"),

		TopK:            v.GetInt("retrieval.top_k"),
		MaxContextChars: v.GetInt("retrieval.max_context_chars"),

		APIListen: v.GetString("api.listen"),
		APITarget: v.GetString("client.api_target"),
	}
}

// ResolveStoreTarget fills in a per-provider default when no store target is
// configured. Embedded stores land inside the .mendel/ directory; server
// stores need an explicit address.
func ResolveStoreTarget(configDir string, s Settings) (string, error) {
	if s.StoreTarget != "" {
		return s.StoreTarget, nil
	}

	switch s.StoreProvider {
	case "sqlite", "chromem":
		target, err := dotdir.NewManager().Target(configDir)
		if err != nil {
			return "", fmt.Errorf("resolving config dir: %w", err)
		}
		if s.StoreProvider == "sqlite" {
			return filepath.Join(target, "mendel.db"), nil
		}
		return filepath.Join(target, "chromem"), nil
	case "qdrant":
		return "localhost:6334", nil
	case "pgvector":
		return "", errors.New("pgvector requires a connection string: set vector_store.target")
	default:
		return "", fmt.Errorf("unsupported vector store provider: %s", s.StoreProvider)
	}
}

// NewDriver builds the configured vector driver.
func NewDriver(ctx context.Context, configDir string, s Settings, logger *slog.Logger) (vector.Driver, error) {
	target, err := ResolveStoreTarget(configDir, s)
	if err != nil {
		return nil, err
	}

	return vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
		ProviderType: s.StoreProvider,
		Target:       target,
		Collection:   s.StoreCollection,
		Dimensions:   s.EmbeddingDims,
		APIKey:       os.Getenv("QDRANT_API_KEY"),
		Logger:       logger,
	})
}

// NewEmbedder builds the configured embedder.
func NewEmbedder(s Settings) (embeddings.Embedder, error) {
	return embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: s.EmbeddingProvider,
		TargetURL:    s.EmbeddingTarget,
		Model:        s.EmbeddingModel,
	})
}

// NewGenerator builds the configured generation client, resolving the API
// key from the environment or stored credentials.
func NewGenerator(configDir string, s Settings) (llm.Generator, error) {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	apiKey, err := mgr.Resolve(s.LLMProvider)
	if err != nil {
		return nil, err
	}

	return llmutils.NewGenerator(&llmutils.NewGeneratorOpts{
		ProviderType: s.LLMProvider,
		TargetURL:    s.LLMTarget,
		Model:        s.LLMModel,
		MaxTokens:    s.LLMMaxTokens,
		APIKey:       apiKey,
	})
}

// NewTutor wires a driver, embedder, and generator into a Tutor.
func NewTutor(driver vector.Driver, embedder embeddings.Embedder, generator llm.Generator, s Settings, logger *slog.Logger) (*rag.Retriever, *rag.Tutor) {
	retriever := rag.NewRetriever(driver, embedder, s.TopK, logger)
	tutor := rag.NewTutor(retriever, generator, s.MaxContextChars, logger)
	return retriever, tutor
}
