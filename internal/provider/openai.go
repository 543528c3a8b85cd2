package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mattheweller/vibesana/internal/version"
)

// Defaults matching the breakdown contract.
const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// OpenAIClient implements the Client interface for the OpenAI API
type OpenAIClient struct {
	apiKey    string
	baseURL   string
	client    *http.Client
	model     string
	maxTokens int
}

// OpenAI API request/response structures
type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []openAIChoice `json:"choices"`
	Usage   Usage          `json:"usage"`
}

type openAIChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason,omitempty"`
}

// Option configures an OpenAIClient
type Option func(*OpenAIClient)

// WithBaseURL overrides the API base URL (used by tests and proxies)
func WithBaseURL(baseURL string) Option {
	return func(c *OpenAIClient) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithModel overrides the default model
func WithModel(model string) Option {
	return func(c *OpenAIClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout overrides the HTTP client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *OpenAIClient) {
		if timeout > 0 {
			c.client.Timeout = timeout
		}
	}
}

// NewOpenAIClient creates a new OpenAI client instance
func NewOpenAIClient(apiKey string, opts ...Option) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key must not be empty")
	}

	c := &OpenAIClient{
		apiKey:    apiKey,
		baseURL:   DefaultBaseURL,
		client:    &http.Client{Timeout: 60 * time.Second},
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Model returns the model identifier this client sends by default.
func (c *OpenAIClient) Model() string {
	return c.model
}

// Complete implements Client.Complete
func (c *OpenAIClient) Complete(ctx context.Context, req *CompletionRequest) (*Completion, error) {
	startTime := time.Now()

	oaiReq := c.buildRequest(req)

	reqBody, err := json.Marshal(oaiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("User-Agent", version.UserAgent())

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// Any non-200 surfaces as a provider error carrying the upstream body
	// so callers can log it without exposing it to clients.
	if httpResp.StatusCode != http.StatusOK {
		return nil, &Error{Status: httpResp.StatusCode, Body: string(respBody)}
	}

	var oaiResp openAIResponse
	if err := json.Unmarshal(respBody, &oaiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	content := ""
	finishReason := ""
	if len(oaiResp.Choices) > 0 {
		content = oaiResp.Choices[0].Message.Content
		finishReason = oaiResp.Choices[0].FinishReason
	}

	return &Completion{
		Content:      content,
		Model:        oaiResp.Model,
		Usage:        oaiResp.Usage,
		Latency:      time.Since(startTime),
		FinishReason: finishReason,
	}, nil
}

// buildRequest constructs an OpenAI API request from our CompletionRequest
func (c *OpenAIClient) buildRequest(req *CompletionRequest) *openAIRequest {
	model := c.model
	if req.Model != "" {
		model = req.Model
	}

	messages := make([]openAIMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openAIMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	maxTokens := c.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	temperature := DefaultTemperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}

	return &openAIRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

// IsAvailable implements Client.IsAvailable
func (c *OpenAIClient) IsAvailable() bool {
	return c.apiKey != ""
}

// Health implements Client.Health
func (c *OpenAIClient) Health(ctx context.Context) error {
	// Simple health check: try to list models
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("create health check request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
