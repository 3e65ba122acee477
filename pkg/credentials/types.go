package credentials

// Credentials is the on-disk shape of credentials.toml, keyed by
// provider name (anthropic, openai).
type Credentials struct {
	Version   int                           `toml:"version"`
	Providers map[string]ProviderCredential `toml:"providers"`
}

// ProviderCredential holds the API key for one LLM provider.
type ProviderCredential struct {
	APIKey string `toml:"api_key"`
}
