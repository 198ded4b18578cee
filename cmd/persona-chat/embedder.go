//go:build !onnx

package main

import (
	"log"

	"github.com/dinadyno/persona-chat/memory"
	"github.com/dinadyno/persona-chat/memory/embedder/mock"
)

// buildEmbedder falls back to the deterministic hash embedder. Builds
// without the onnx tag cannot do real semantic search.
func buildEmbedder(modelPath, tokenizerPath string) (memory.Embedder, error) {
	if modelPath != "" {
		log.Printf("[MAIN] Ignoring --onnx-model: rebuild with -tags onnx for semantic embeddings")
	}
	log.Printf("[MAIN] Using hash embedder; retrieval will not be semantic")
	return mock.New(), nil
}
