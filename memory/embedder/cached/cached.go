// Package cached wraps an Embedder with a ristretto cache. Each chat turn
// embeds the same user text twice (once for retrieval, once for
// persistence), so memoizing embeddings halves the embedding work.
package cached

import (
	"context"

	"github.com/dgraph-io/ristretto"
	"github.com/m-mizutani/goerr/v2"

	"github.com/dinadyno/persona-chat/memory"
)

// Embedder memoizes the inner embedder's results keyed by input text.
// Eviction is entirely ristretto's own policy.
type Embedder struct {
	inner memory.Embedder
	cache *ristretto.Cache
}

// New creates a caching embedder around inner.
func New(inner memory.Embedder) (*Embedder, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1 << 24, // ~16MB of float32 vectors
		BufferItems: 64,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "create embedding cache")
	}
	return &Embedder{inner: inner, cache: cache}, nil
}

// Embed returns the cached embedding for text, computing and caching it on
// a miss.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		if embedding, ok := v.([]float32); ok {
			return embedding, nil
		}
	}

	embedding, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	e.cache.Set(text, embedding, int64(4*len(embedding)))
	// Make the write visible before the paired persistence embed of the
	// same text in this turn.
	e.cache.Wait()

	return embedding, nil
}

// Dimensions returns the inner embedder's vector size.
func (e *Embedder) Dimensions() int {
	return e.inner.Dimensions()
}

var _ memory.Embedder = (*Embedder)(nil)
