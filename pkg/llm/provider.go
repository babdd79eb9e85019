package llm

import "context"

// Provider defines the interface for summarization backends.
// Implementations handle protocol-specific details such as request
// formatting, authentication, and response parsing.
type Provider interface {
	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, messages []Message) (*Response, error)
}

// Pinger is implemented by providers that can cheaply verify their
// credentials and connectivity before a session starts.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds common configuration for LLM providers.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}
