package llm

import (
	"context"
	"errors"
)

var (
	ErrNoProvider = errors.New("no provider configured")
)

// Provider defines the interface for external text-generation providers.
// A nil Provider means no credential is configured; callers fall back to
// their deterministic local generators.
type Provider interface {
	// Name returns the provider identifier, e.g. "claude/claude-sonnet-4-20250514"
	Name() string

	// Generate performs a completion request
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// Request represents a completion request
type Request struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	System      string // system prompt (some providers handle this separately)
}

// Message represents a chat message
type Message struct {
	Role    Role
	Content string
}

// Role represents the role of a message sender
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Response represents a completion response
type Response struct {
	Content      string
	FinishReason string
	Usage        Usage
}

// Usage tracks token usage
type Usage struct {
	InputTokens  int
	OutputTokens int
}
