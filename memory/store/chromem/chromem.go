// Package chromem implements the memory store on top of chromem-go, a pure
// Go embedded vector database with disk persistence.
package chromem

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	chromem "github.com/philippgille/chromem-go"

	"github.com/dinadyno/persona-chat/memory"
)

// Store wraps a persistent chromem-go database. One collection per persona;
// collections are created lazily and survive process restarts.
type Store struct {
	db          *chromem.DB
	mu          sync.Mutex
	collections map[string]*chromem.Collection
}

// New opens (or creates) the persistent database at path.
func New(path string) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, goerr.Wrap(err, "open chromem db", goerr.V("path", path))
	}

	log.Printf("[CHROMEM] Opened database at %s", path)
	return &Store{
		db:          db,
		collections: make(map[string]*chromem.Collection),
	}, nil
}

// getOrCreate returns the named collection, creating it on first access.
// Calling it twice with the same name yields the same underlying data.
func (s *Store) getOrCreate(name string) (*chromem.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if col, ok := s.collections[name]; ok {
		return col, nil
	}

	// Embeddings are always supplied by the caller, so no embedding func.
	col, err := s.db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "get or create collection", goerr.V("collection", name))
	}

	s.collections[name] = col
	return col, nil
}

// Add stores the records in a single call. All records are converted before
// any is written, and a duplicate ID fails the whole batch so a turn cannot
// be half-persisted.
func (s *Store) Add(ctx context.Context, collection string, recs []memory.Record) error {
	col, err := s.getOrCreate(collection)
	if err != nil {
		return err
	}

	docs := make([]chromem.Document, 0, len(recs))
	for _, rec := range recs {
		if _, err := col.GetByID(ctx, rec.ID); err == nil {
			return goerr.Wrap(memory.ErrDuplicateID, "add records",
				goerr.V("id", rec.ID), goerr.V("collection", collection))
		}
		docs = append(docs, chromem.Document{
			ID:        rec.ID,
			Content:   rec.Content,
			Embedding: rec.Embedding,
			Metadata: map[string]string{
				"role":      rec.Role,
				"timestamp": rec.Timestamp.Format(time.RFC3339Nano),
			},
		})
	}

	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return goerr.Wrap(err, "add documents", goerr.V("collection", collection))
	}

	log.Printf("[CHROMEM] Stored %d records in %s", len(docs), collection)
	return nil
}

// Query returns up to k records nearest to the embedding, in the store's
// similarity order. chromem rejects nResults larger than the collection, so
// k is clamped to the current document count.
func (s *Store) Query(ctx context.Context, collection string, embedding []float32, k int) ([]memory.Record, error) {
	col, err := s.getOrCreate(collection)
	if err != nil {
		return nil, err
	}

	if n := col.Count(); k > n {
		k = n
	}
	if k <= 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, embedding, k, nil, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "query collection", goerr.V("collection", collection))
	}

	recs := make([]memory.Record, 0, len(results))
	for _, res := range results {
		ts, err := time.Parse(time.RFC3339Nano, res.Metadata["timestamp"])
		if err != nil {
			// Keep the record; it sorts first with a zero timestamp.
			log.Printf("[CHROMEM] Record %s has unparseable timestamp %q", res.ID, res.Metadata["timestamp"])
		}
		recs = append(recs, memory.Record{
			ID:        res.ID,
			Content:   res.Content,
			Role:      res.Metadata["role"],
			Timestamp: ts,
			Embedding: res.Embedding,
		})
	}

	log.Printf("[CHROMEM] Query on %s returned %d of %d requested", collection, len(recs), k)
	return recs, nil
}

// Clear deletes the collection and recreates it empty so the name is
// immediately usable again. The two steps are not atomic; a failure in
// between leaves the collection destroyed until the next access recreates it.
func (s *Store) Clear(ctx context.Context, collection string) error {
	s.mu.Lock()
	delete(s.collections, collection)
	err := s.db.DeleteCollection(collection)
	s.mu.Unlock()
	if err != nil {
		return goerr.Wrap(err, "delete collection", goerr.V("collection", collection))
	}

	if _, err := s.getOrCreate(collection); err != nil {
		return err
	}

	log.Printf("[CHROMEM] Cleared collection %s", collection)
	return nil
}

// Close releases resources. chromem persists on every write, so there is
// nothing to flush.
func (s *Store) Close() error {
	return nil
}

var _ memory.Store = (*Store)(nil)
