package ai

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
)

const (
	// defaultBaseURL is the OpenAI API endpoint. Any server speaking the
	// chat completions protocol can be substituted via Options.BaseURL.
	defaultBaseURL = "https://api.openai.com/v1"

	// defaultModel is used when Options.Model is empty.
	defaultModel = "gpt-4o-mini"

	// defaultMaxTokens bounds the completion length.
	defaultMaxTokens = 800

	// defaultTimeout bounds a single completion request.
	defaultTimeout = 60 * time.Second
)

var (
	// ErrNoAPIKey is returned when a client is created without a key.
	ErrNoAPIKey = errors.New("ai: API key is not set")

	// ErrEmptyResponse is returned when the model returns no content.
	ErrEmptyResponse = errors.New("ai: model returned empty response")
)

// Options configures a Client.
type Options struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// BaseURL overrides the API endpoint. Optional.
	BaseURL string

	// Model overrides the completion model. Optional.
	Model string

	// MaxTokens bounds the completion length. Optional.
	MaxTokens int

	// HTTPClient overrides the transport. Optional.
	HTTPClient *http.Client
}

// Client calls an OpenAI-compatible chat completions API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// NewClient creates a Client from the given options.
// Returns ErrNoAPIKey when no key is configured.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrNoAPIKey
	}

	c := &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		model:      opts.Model,
		maxTokens:  opts.MaxTokens,
		httpClient: opts.HTTPClient,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultMaxTokens
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return c, nil
}

// Model returns the completion model in use.
func (c *Client) Model() string {
	return c.model
}

// chatRequest is the chat completions request body.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse is the subset of the response body we read.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// ChatJSON sends a system and user message and returns the model's
// response parsed as a JSON object. The request asks for JSON output
// via response_format, so well-behaved models return nothing else.
func (c *Client) ChatJSON(ctx context.Context, system, user string) (json.RawMessage, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0.2,
		MaxTokens:      c.maxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("ai: failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ai: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ai: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("ai: failed to read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("ai: failed to decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("ai: API error (%s): %s", parsed.Error.Type, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ai: unexpected status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return nil, ErrEmptyResponse
	}

	content := parsed.Choices[0].Message.Content
	if !json.Valid([]byte(content)) {
		return nil, fmt.Errorf("ai: model did not return valid JSON: %.200s", content)
	}
	return json.RawMessage(content), nil
}
