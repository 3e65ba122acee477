// Package llm defines the hosted model interface used for answer generation.
package llm

import (
	"context"
	"errors"
)

// Turn roles understood by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces a model completion for a conversation.
type Generator interface {
	// Generate returns the model's reply to the conversation. Turns are
	// sent in order; the last turn is expected to be from the user.
	Generate(ctx context.Context, turns []Turn) (string, error)

	// Close releases any resources held by the generator.
	Close() error
}

var (
	// ErrAuthentication indicates a missing or rejected API credential.
	ErrAuthentication = errors.New("llm authentication failed")

	// ErrRateLimited indicates the provider throttled the request after
	// all retries were exhausted.
	ErrRateLimited = errors.New("llm rate limited")

	// ErrService indicates any other provider-side failure.
	ErrService = errors.New("llm service error")
)
