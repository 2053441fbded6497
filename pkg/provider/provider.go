// Package provider implements language-model bindings for agent
// capabilities. All providers expose the same completion contract so the
// subagent factory can bind any of them to any role.
package provider

import "context"

// Provider defines the interface for LLM backends.
type Provider interface {
	// CreateCompletion sends a completion request and returns the text
	// response. Implementations must honor ctx cancellation and deadlines.
	CreateCompletion(ctx context.Context, request CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name (e.g. "openai", "anthropic").
	Name() string
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	// Messages is the conversation to complete.
	Messages []Message `json:"messages"`

	// Model is the model identifier. Empty means the provider default.
	Model string `json:"model,omitempty"`

	// Temperature controls randomness (0.0-2.0).
	Temperature float64 `json:"temperature,omitempty"`

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	// Content is the generated text.
	Content string `json:"content"`

	// Model is the model that produced the response.
	Model string `json:"model,omitempty"`

	// Usage reports token consumption when the backend provides it.
	Usage Usage `json:"usage,omitempty"`
}

// Usage reports token consumption for a single completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
