package memory

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/dinadyno/persona-chat/core"
)

// DefaultTopK is how many past records are recalled per turn.
const DefaultTopK = 5

// Recall ties a Store and an Embedder together into the conversational
// memory used by the chat orchestrator. It decides how queries are embedded,
// how retrieved records are ordered, and how completed turns are persisted.
type Recall struct {
	store    Store
	embedder Embedder
	topK     int
}

// NewRecall creates a Recall over the given store and embedder.
func NewRecall(store Store, embedder Embedder) *Recall {
	return &Recall{
		store:    store,
		embedder: embedder,
		topK:     DefaultTopK,
	}
}

// Retrieve finds past records related to the query and returns them as
// messages sorted ascending by timestamp. Retrieval order from the store is
// similarity-based; re-sorting approximates chronological conversation
// order before the records are replayed to the model.
func (r *Recall) Retrieve(ctx context.Context, persona core.Persona, query string) ([]core.Message, error) {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	recs, err := r.store.Query(ctx, persona.CollectionName(), embedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("query store: %w", err)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Timestamp.Before(recs[j].Timestamp)
	})

	log.Printf("[MEMORY] Recalled %d records for %s", len(recs), persona)

	msgs := make([]core.Message, 0, len(recs))
	for _, rec := range recs {
		msgs = append(msgs, core.Message{Role: rec.Role, Content: rec.Content})
	}
	return msgs, nil
}

// RecordTurn persists both halves of a completed turn as a unit. The user
// record carries the turn time; see NewTurnRecords for the ordering rule.
func (r *Recall) RecordTurn(ctx context.Context, persona core.Persona, userText, assistantText string, at time.Time) error {
	user, assistant := NewTurnRecords(userText, assistantText, at)

	var err error
	if user.Embedding, err = r.embedder.Embed(ctx, user.Content); err != nil {
		return fmt.Errorf("embed user record: %w", err)
	}
	if assistant.Embedding, err = r.embedder.Embed(ctx, assistant.Content); err != nil {
		return fmt.Errorf("embed assistant record: %w", err)
	}

	if err := r.store.Add(ctx, persona.CollectionName(), []Record{user, assistant}); err != nil {
		return fmt.Errorf("store turn: %w", err)
	}

	log.Printf("[MEMORY] Stored turn for %s (%s, %s)", persona, user.ID, assistant.ID)
	return nil
}

// Clear drops the persona's collection. The store recreates it empty so the
// persona can keep chatting immediately.
func (r *Recall) Clear(ctx context.Context, persona core.Persona) error {
	if err := r.store.Clear(ctx, persona.CollectionName()); err != nil {
		return fmt.Errorf("clear collection: %w", err)
	}
	log.Printf("[MEMORY] Cleared memory for %s", persona)
	return nil
}
