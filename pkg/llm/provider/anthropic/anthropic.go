// Package anthropic implements pkg/llm's Generator for Anthropic's Messages API.
package anthropic

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
	// DefaultBaseURL is the default Anthropic API URL.
	DefaultBaseURL = "https://api.anthropic.com"

	// DefaultModel is the default model used for generation.
	DefaultModel = "claude-sonnet-4-20250514"

	// DefaultMaxTokens is the default completion token limit.
	DefaultMaxTokens = 2048

	apiVersion = "2023-06-01"
)

// Client wraps Anthropic's Messages API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// ClientConfig holds configuration for the Anthropic client.
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

type messagesRequest struct {
	Model     string     `json:"model"`
	MaxTokens int        `json:"max_tokens"`
	System    string     `json:"system,omitempty"`
	Messages  []llm.Turn `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewClient creates a new Anthropic generation client. A missing API key
// fails immediately so the problem surfaces before any retrieval work.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: no API key configured for anthropic", llm.ErrAuthentication)
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

// Generate returns the model's reply to the conversation. System turns are
// folded into the Messages API's top-level system field.
func (c *Client) Generate(ctx context.Context, turns []llm.Turn) (string, error) {
	var system []string
	messages := make([]llm.Turn, 0, len(turns))
	for _, t := range turns {
		if t.Role == llm.RoleSystem {
			system = append(system, t.Content)
			continue
		}
		messages = append(messages, t)
	}

	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    strings.Join(system, "\n\n"),
		Messages:  messages,
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
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: sending request: %v", llm.ErrService, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", resp.Header.Get("Retry-After"), statusError(resp)
	}

	var msgResp messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return "", "", fmt.Errorf("%w: decoding response: %v", llm.ErrService, err)
	}

	var text strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", "", fmt.Errorf("%w: empty completion", llm.ErrService)
	}

	return text.String(), "", nil
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
		return fmt.Errorf("%w: anthropic returned status %d: %s", llm.ErrAuthentication, resp.StatusCode, detail)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: anthropic returned status %d: %s", llm.ErrRateLimited, resp.StatusCode, detail)
	default:
		return fmt.Errorf("%w: anthropic returned status %d: %s", llm.ErrService, resp.StatusCode, detail)
	}
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

var _ llm.Generator = (*Client)(nil)
