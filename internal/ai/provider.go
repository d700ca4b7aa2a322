package ai

import (
	"context"
	"fmt"
)

// ChatMessage represents a single message in a chat conversation
type ChatMessage struct {
	Role    string `json:"role"` // "system" or "user"
	Content string `json:"content"`
}

// ChatOptions holds options for chat completion requests
type ChatOptions struct {
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// ChatResponse represents the response from a chat request
type ChatResponse struct {
	Content  string `json:"content"`
	Model    string `json:"model"`
	Provider string `json:"provider"`
}

// Provider is a chat-completion capable language model backend.
type Provider interface {
	GetName() string
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (*ChatResponse, error)
	IsAvailable() bool
}

// ProviderError describes a failure inside a specific provider
type ProviderError struct {
	Provider string
	Type     string // "auth", "network", "response"
	Message  string
	Cause    error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s provider %s error: %s: %v", e.Provider, e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s provider %s error: %s", e.Provider, e.Type, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Cause }
