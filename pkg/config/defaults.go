package config

const (
	defaultCorpusDir = "corpus"

	// Chunk sizes are in runes. 1000/200 mirrors the splitter settings the
	// genetics corpus was originally tuned with.
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200

	defaultVectorProvider   = "sqlite"
	defaultVectorCollection = "genetics_knowledge"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultLLMProvider  = "anthropic"
	defaultLLMTarget    = "https://api.anthropic.com"
	defaultLLMModel     = "claude-sonnet-4-20250514"
	defaultLLMMaxTokens = 2048

	defaultTopK            = 5
	defaultMaxContextChars = 12000

	defaultAPIListen       = ":8082"
	defaultClientAPITarget = "http://localhost:8082"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Corpus: CorpusConfig{
			Dir: defaultCorpusDir,
		},
		Chunking: ChunkingConfig{
			Size:    defaultChunkSize,
			Overlap: defaultChunkOverlap,
		},
		VectorStore: VectorStoreConfig{
			Provider:   defaultVectorProvider,
			Collection: defaultVectorCollection,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		LLM: LLMConfig{
			Provider:  defaultLLMProvider,
			Target:    defaultLLMTarget,
			Model:     defaultLLMModel,
			MaxTokens: defaultLLMMaxTokens,
		},
		Retrieval: RetrievalConfig{
			TopK:            defaultTopK,
			MaxContextChars: defaultMaxContextChars,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
	}
}
