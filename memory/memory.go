package memory

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// ErrDuplicateID is reported when a record with the same ID already exists
// in the target collection.
var ErrDuplicateID = goerr.New("record id already exists")

// Store is the vector storage backend interface.
// Implementations: chromem store (local app), test fakes.
type Store interface {
	// Add stores all records in one call. A turn's user/assistant pair is
	// always written together so a partial turn cannot be persisted.
	// Duplicate record IDs are reported via ErrDuplicateID; the caller
	// decides whether that is fatal.
	Add(ctx context.Context, collection string, recs []Record) error

	// Query retrieves up to k records most similar to the embedding, in the
	// store's own similarity order. Ranking internals belong to the store.
	Query(ctx context.Context, collection string, embedding []float32, k int) ([]Record, error)

	// Clear deletes all data for the collection and immediately recreates
	// it empty, so the name stays usable.
	Clear(ctx context.Context, collection string) error

	// Close releases resources.
	Close() error
}

// Embedder converts text to vector embeddings.
// Implementations: mock (testing), ONNX (local semantic search), cached.
type Embedder interface {
	// Embed converts a single text to an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int
}
