// Package configcmder provides commands for reading and writing config.toml.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Read and write mendel configuration values.

Configuration lives in config.toml in the .mendel/ directory. Keys use
dotted section.key notation:

  corpus.dir                  Directory of plain-text corpus files
  chunking.size               Chunk size in runes
  chunking.overlap            Overlap between consecutive chunks in runes
  vector_store.provider       sqlite, chromem, qdrant, or pgvector
  vector_store.target         Store location (path, host:port, or DSN)
  vector_store.collection     Collection or table namespace
  embedding.provider          Embedding provider (ollama)
  embedding.target            Embedding service base URL
  embedding.model             Embedding model name
  embedding.dimensions        Embedding vector dimensions
  llm.provider                anthropic, openai, or ollama
  llm.target                  LLM API base URL
  llm.model                   LLM model name
  llm.max_tokens              Maximum tokens per generation
  retrieval.top_k             Number of chunks retrieved per question
  retrieval.max_context_chars Context budget for prompt assembly
  api.listen                  HTTP API listen address
  client.api_target           API base URL used by client commands

Examples:
  mendel config list
  mendel config get llm.model
  mendel config set retrieval.top_k 8`

const configShortDesc string = "Read and write configuration values"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
