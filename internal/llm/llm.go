package llm

import (
	"context"
)

// Options controls a single completion request.
type Options struct {
	Temperature float32
	MaxTokens   int
	JSONMode    bool
}

// TextGenerator is an interface for generating text from a prompt pair.
type TextGenerator interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, opts Options) (string, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// ModelNamer is implemented by clients that expose their model identifier.
type ModelNamer interface {
	ModelName() string
}

// ModelName returns the model identifier of gen, or "unknown" for
// generators that do not expose one.
func ModelName(gen TextGenerator) string {
	if n, ok := gen.(ModelNamer); ok {
		return n.ModelName()
	}
	return "unknown"
}
