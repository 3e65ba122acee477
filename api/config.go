// Package api provides the HTTP API server for searching the corpus and
// asking the tutor questions.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8082")
	ListenAddr string

	// DefaultTopK is the result count used when a search request does not
	// specify top_k.
	DefaultTopK int

	// MaxHistoryTurns bounds how many conversation turns a session keeps.
	MaxHistoryTurns int
}
