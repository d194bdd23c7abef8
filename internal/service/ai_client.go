package service

import (
	"context"
)

// AIClient is the boundary to the hosted generative-model and embedding APIs.
// Implementations must treat an empty/no-candidate model response as a normal
// return, not an error.
type AIClient interface {
	// Complete runs a free-text chat completion for the given prompt
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteJSON runs a chat completion in JSON-constrained mode and
	// returns the raw response text. Callers parse it tolerantly; the model
	// is asked, not forced, to conform.
	CompleteJSON(ctx context.Context, prompt string) (string, error)

	// CompleteStream runs a streaming completion, invoking the callback per
	// chunk, and returns the accumulated content.
	CompleteStream(ctx context.Context, prompt string, callback StreamCallback) (string, error)

	// CreateEmbeddings generates one embedding per input text, order-preserving
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)

	// IsEnabled reports whether the client is configured and ready
	IsEnabled() bool
}

// StreamCallback is called for each chunk in streaming mode
type StreamCallback func(chunk *StreamChunk) error

// StreamChunk represents a generic streaming response chunk
type StreamChunk struct {
	// Regular content
	Content string

	// Thinking/reasoning content (provider-specific, e.g. DeepSeek)
	ThinkingContent string

	// Role (assistant, user, system)
	Role string

	// Whether this is the final chunk
	Done bool
}
