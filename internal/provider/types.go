package provider

import "time"

// Message roles understood by the chat-completion endpoint.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a conversation
type Message struct {
	// Role is who sent the message: "user", "assistant", or "system"
	Role string `json:"role"`

	// Content is the message text
	Content string `json:"content"`
}

// CompletionRequest contains all parameters for one chat completion
type CompletionRequest struct {
	// Messages is the ordered prompt (system instructions first)
	Messages []Message `json:"messages"`

	// Model overrides the client's configured model when non-empty
	Model string `json:"model,omitempty"`

	// MaxTokens limits the maximum response length
	// Set to 0 to use the client default
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0 = deterministic, 1.0+ = creative)
	Temperature float64 `json:"temperature,omitempty"`
}

// Completion contains the model's response
type Completion struct {
	// Content is the raw assistant text
	Content string `json:"content"`

	// Model is the actual model that generated the response
	Model string `json:"model"`

	// Usage holds token accounting when the provider supplies it
	Usage Usage `json:"usage"`

	// Latency is how long the call took
	Latency time.Duration `json:"latency"`

	// FinishReason explains why generation stopped
	// Common values: "stop" (natural end), "length" (max tokens)
	FinishReason string `json:"finish_reason"`
}

// Usage holds token accounting for one completion
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
