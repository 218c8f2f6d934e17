package ai

import (
	"context"
	"time"
)

// Provider is the narrative-generation collaborator behind the insight
// service. Implementations wrap one chat-completion API.
type Provider interface {
	// ChatCompletion performs a chat completion
	ChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Name returns the provider name (e.g., "openai")
	Name() string
}

// ChatRequest represents a chat completion request
type ChatRequest struct {
	Messages     []Message `json:"messages"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
	MaxTokens    int       `json:"max_tokens,omitempty"`
	Temperature  float64   `json:"temperature,omitempty"`
}

// Message represents a single message in a conversation
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatResponse represents the response from a chat completion
type ChatResponse struct {
	Content      string        `json:"content"`
	TokensUsed   int           `json:"tokens_used"`
	Provider     string        `json:"provider"`
	FinishReason string        `json:"finish_reason"`
	Model        string        `json:"model"`
	Duration     time.Duration `json:"duration"`
}

// ProviderConfig holds configuration for chat providers
type ProviderConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// ProviderError represents an error from a chat provider
type ProviderError struct {
	Provider  string
	Code      string
	Message   string
	Retryable bool
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Message
}

// Common error codes
const (
	ErrorCodeRateLimit      = "rate_limit"
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeAuthentication = "authentication"
	ErrorCodeServerError    = "server_error"
	ErrorCodeTimeout        = "timeout"
	ErrorCodeUnavailable    = "unavailable"
)
