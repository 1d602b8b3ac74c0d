package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIEmbedder embeds text with the OpenAI embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewEmbedder creates an embedder from cfg. When the generation service is
// OpenAI compatible, its connection settings fill in whatever cfg leaves
// empty so a single key serves both.
func NewEmbedder(cfg *EmbeddingConfig, gen *Config) (*OpenAIEmbedder, error) {
	var opts []option.RequestOption

	if gen != nil && gen.Provider == ProviderAzure && cfg.APIKey == "" && cfg.BaseURL == "" {
		azureOpts, err := clientOptions(gen)
		if err != nil {
			return nil, err
		}
		opts = append(opts, azureOpts...)
	} else {
		apiKey, baseURL := cfg.APIKey, cfg.BaseURL
		if gen != nil && gen.Provider == ProviderOpenAI {
			if apiKey == "" {
				apiKey = gen.APIKey
			}
			if baseURL == "" {
				baseURL = gen.BaseURL
			}
		}
		if apiKey != "" {
			opts = append(opts, option.WithAPIKey(apiKey))
		}
		if baseURL != "" {
			opts = append(opts, option.WithBaseURL(baseURL))
		}
	}

	opts = append(opts, option.WithMaxRetries(cfg.MaxRetries))

	client := openai.NewClient(opts...)
	return NewEmbedderFromClient(&client, cfg.Model), nil
}

// NewEmbedderFromClient wraps an existing client.
func NewEmbedderFromClient(client *openai.Client, model string) *OpenAIEmbedder {
	return &OpenAIEmbedder{client: client, model: model}
}

// Model returns the embedding model name.
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

// Embed requests one vector per text. Results are ordered by the index the
// service reports, which matches input order.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrEmbeddingCount, len(resp.Data), len(texts))
	}

	vectors := make([][]float64, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(vectors) {
			return nil, fmt.Errorf("%w: index %d out of range", ErrEmbeddingCount, d.Index)
		}
		vectors[d.Index] = d.Embedding
	}

	return vectors, nil
}
