//go:build onnx

package main

import (
	"log"

	"github.com/dinadyno/persona-chat/memory"
	"github.com/dinadyno/persona-chat/memory/embedder/mock"
	"github.com/dinadyno/persona-chat/memory/embedder/onnx"
)

// buildEmbedder uses the local MiniLM ONNX model when its files are
// configured, otherwise falls back to the deterministic hash embedder.
func buildEmbedder(modelPath, tokenizerPath string) (memory.Embedder, error) {
	if modelPath == "" {
		log.Printf("[MAIN] No --onnx-model configured; using hash embedder")
		return mock.New(), nil
	}
	log.Printf("[MAIN] Loading ONNX embedder from %s", modelPath)
	return onnx.New(onnx.Config{
		ModelPath:     modelPath,
		TokenizerPath: tokenizerPath,
	})
}
