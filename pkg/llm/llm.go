// Package llm adapts external text-generation and embedding services to the
// small request/response contract the analysis pipeline consumes.
//
// Retries are owned by the underlying SDK transport (configured through
// MaxRetries). The adapters here issue exactly one logical call per request.
package llm

import (
	"context"
	"errors"
)

var (
	// ErrEmptyResponse is returned when the service answers without any text.
	ErrEmptyResponse = errors.New("empty response from generation service")
	// ErrUnknownProvider is returned for a provider name with no adapter.
	ErrUnknownProvider = errors.New("unknown generation provider")
	// ErrEmbeddingCount is returned when the service returns a different
	// number of vectors than inputs.
	ErrEmbeddingCount = errors.New("embedding count mismatch")
)

// Request is a single chat-style generation call: a system role framing the
// model, the user prompt, sampling temperature, an output token budget, and
// whether the service should be constrained to emit one JSON object.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int64
	JSON        bool
}

// Response carries the generated text and the total token usage reported by
// the service (zero when the service does not report usage).
type Response struct {
	Text        string
	TotalTokens int64
}

// Generator produces text for a Request. Implementations must be safe for
// concurrent use. A reply without text yields ErrEmptyResponse together with
// a Response carrying the usage the call consumed.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Embedder turns texts into vectors, one per input in input order.
// Implementations must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// New returns the Generator for cfg.Provider.
func New(cfg *Config) (Generator, error) {
	switch cfg.Provider {
	case ProviderOpenAI, ProviderAzure:
		return NewOpenAI(cfg)
	case ProviderAnthropic:
		return NewAnthropic(cfg), nil
	default:
		return nil, ErrUnknownProvider
	}
}
