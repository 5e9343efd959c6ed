package llm

import (
	"context"
	"iter"
)

// Request is one completion call. MaxTokens of 0 leaves the provider default.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
	// JSONOutput asks the model for a single JSON document.
	JSONOutput bool
}

// Provider is a completion model. Stream yields text fragments; a failure is yielded
// as the last element. Stopping the range loop early releases the connection.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
	Stream(ctx context.Context, req Request) iter.Seq2[string, error]
}
