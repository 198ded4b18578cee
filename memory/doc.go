// Package memory provides persona-scoped conversational memory backed by a
// local vector store.
//
// Every completed chat turn is written as two records (the user's text and
// the assistant's text) into the active persona's collection. Before the
// next model call, the most similar past records are retrieved and replayed
// ahead of the new user message, approximating a conversation the model can
// remember across process restarts.
//
// Architecture:
//   - Store: vector storage backend (chromem-go on disk for the local app)
//   - Embedder: text-to-vector conversion (ONNX MiniLM locally, mock in tests)
//   - Recall: orchestrates embedding, retrieval ordering, and turn persistence
//
// Records are namespaced by persona collection, created on turn completion,
// never mutated, and removed only by clearing a whole collection.
package memory
