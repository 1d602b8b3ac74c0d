package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/catalyst/pkg/cache"
	"github.com/JaimeStill/catalyst/pkg/llm"
)

// CachedEmbedder serves repeated texts from a cache and sends only misses
// to the wrapped embedder. Cache failures are logged and treated as misses.
type CachedEmbedder struct {
	inner  llm.Embedder
	cache  cache.Cache
	model  string
	logger *slog.Logger
}

// NewCachedEmbedder wraps inner. Keys are scoped by model so vectors from
// different models never mix.
func NewCachedEmbedder(inner llm.Embedder, c cache.Cache, model string, logger *slog.Logger) *CachedEmbedder {
	return &CachedEmbedder{
		inner:  inner,
		cache:  c,
		model:  model,
		logger: logger.With("system", "embedding-cache"),
	}
}

func (e *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))

	var (
		missIdx   []int
		missTexts []string
	)

	for i, text := range texts {
		if v, ok := e.lookup(ctx, text); ok {
			vectors[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	embedded, err := e.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	if len(embedded) != len(missTexts) {
		return nil, fmt.Errorf("%w: got %d, want %d", llm.ErrEmbeddingCount, len(embedded), len(missTexts))
	}

	for j, i := range missIdx {
		vectors[i] = embedded[j]
		e.store(ctx, missTexts[j], embedded[j])
	}

	return vectors, nil
}

func (e *CachedEmbedder) lookup(ctx context.Context, text string) ([]float64, bool) {
	data, found, err := e.cache.Get(ctx, e.key(text))
	if err != nil {
		e.logger.WarnContext(ctx, "cache read failed", "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}

	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		e.logger.WarnContext(ctx, "cache entry unreadable", "error", err)
		return nil, false
	}
	return v, true
}

func (e *CachedEmbedder) store(ctx context.Context, text string, v []float64) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, e.key(text), data); err != nil {
		e.logger.WarnContext(ctx, "cache write failed", "error", err)
	}
}

func (e *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "emb:" + e.model + ":" + hex.EncodeToString(sum[:])
}
