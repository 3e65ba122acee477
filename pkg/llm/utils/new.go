// Package llmutils constructs generation clients from configuration.
package llmutils

import (
	"fmt"

	"github.com/mendellabsco/mendel/pkg/llm"
	"github.com/mendellabsco/mendel/pkg/llm/provider/anthropic"
	"github.com/mendellabsco/mendel/pkg/llm/provider/ollama"
	"github.com/mendellabsco/mendel/pkg/llm/provider/openai"
)

type NewGeneratorOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
	MaxTokens    int
	APIKey       string
}

func NewGenerator(o *NewGeneratorOpts) (llm.Generator, error) {
	switch o.ProviderType {
	case "anthropic":
		return anthropic.NewClient(anthropic.ClientConfig{
			BaseURL:   o.TargetURL,
			APIKey:    o.APIKey,
			Model:     o.Model,
			MaxTokens: o.MaxTokens,
		})
	case "openai":
		return openai.NewClient(openai.ClientConfig{
			BaseURL:   o.TargetURL,
			APIKey:    o.APIKey,
			Model:     o.Model,
			MaxTokens: o.MaxTokens,
		})
	case "ollama":
		return ollama.NewClient(ollama.ClientConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", o.ProviderType)
	}
}
