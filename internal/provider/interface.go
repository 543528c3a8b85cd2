// Package provider implements the chat-completion client for the
// language-model service behind the breakdown pipeline.
package provider

import "context"

// Client is the interface the breakdown service depends on. A single
// implementation talks to the OpenAI API; tests substitute fakes.
type Client interface {
	// Complete sends the prompt and returns the assistant's response.
	// One attempt per call; retries are the caller's policy decision.
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)

	// IsAvailable checks if the client is configured and ready to use.
	IsAvailable() bool

	// Health performs a connectivity check against the provider.
	// Returns nil if healthy, error describing the problem otherwise.
	Health(ctx context.Context) error
}
