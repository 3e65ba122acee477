// Package openai implements pkg/llm's Generator for OpenAI's Chat Completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mendellabsco/mendel/pkg/llm"
)

const (
	// DefaultBaseURL is the default OpenAI API URL.
	DefaultBaseURL = "https://api.openai.com"

	// DefaultModel is the default model used for generation.
	DefaultModel = "gpt-4o-mini"

	// DefaultMaxTokens is the default completion token limit.
	DefaultMaxTokens = 2048
)

// Client wraps OpenAI's Chat Completions API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// ClientConfig holds configuration for the OpenAI client.
type ClientConfig struct {
	// BaseURL is the API URL. Defaults to DefaultBaseURL if empty.
	BaseURL string

	// APIKey authenticates requests. Required.
	APIKey string

	// Model is the model to use. Defaults to DefaultModel if empty.
	Model string

	// MaxTokens caps the completion length. Defaults to DefaultMaxTokens
	// if zero.
	MaxTokens int
}

type chatRequest struct {
	Model     string     `json:"model"`
	MaxTokens int        `json:"max_tokens,omitempty"`
	Messages  []llm.Turn `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient creates a new OpenAI generation client. A missing API key fails
// immediately so the problem surfaces before any retrieval work.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: no API key configured for openai", llm.ErrAuthentication)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	return &Client{
		baseURL:   baseURL,
		apiKey:    cfg.APIKey,
		model:     model,
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Generate returns the model's reply to the conversation.
func (c *Client) Generate(ctx context.Context, turns []llm.Turn) (string, error) {
	reqBody := chatRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  turns,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		text, retryAfter, err := c.send(ctx, jsonBody)
		if err == nil {
			return text, nil
		}

		// Rate limiting is the only retried failure.
		if !errors.Is(err, llm.ErrRateLimited) || attempt >= llm.MaxRateLimitRetries {
			return "", err
		}

		if err := llm.SleepContext(ctx, llm.RetryDelay(attempt, retryAfter)); err != nil {
			return "", fmt.Errorf("%w: %v", llm.ErrRateLimited, err)
		}
	}
}

func (c *Client) send(ctx context.Context, body []byte) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: sending request: %v", llm.ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", resp.Header.Get("Retry-After"), statusError(resp)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", "", fmt.Errorf("%w: decoding response: %v", llm.ErrService, err)
	}

	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return "", "", fmt.Errorf("%w: empty completion", llm.ErrService)
	}

	return chatResp.Choices[0].Message.Content, "", nil
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	detail := strings.TrimSpace(string(body))
	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		detail = errResp.Error.Message
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: openai returned status %d: %s", llm.ErrAuthentication, resp.StatusCode, detail)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: openai returned status %d: %s", llm.ErrRateLimited, resp.StatusCode, detail)
	default:
		return fmt.Errorf("%w: openai returned status %d: %s", llm.ErrService, resp.StatusCode, detail)
	}
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

var _ llm.Generator = (*Client)(nil)
