// Package llm defines the language-model boundary. Callers depend only on
// the Client interface — never on a specific provider package.
package llm

import "context"

// Role identifies who authored a message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one entry of an ordered prompt.
type Message struct {
	Role    Role
	Content string
}

// Request is a single completion request.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64 // 0 requests deterministic sampling
	MaxTokens   int64   // 0 uses the provider default
}

// Client is the single contract every language-model provider must satisfy.
// Complete returns the first completion's text, or "" when the model
// returned no content — empty content is not an error.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
