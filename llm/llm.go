// Package llm provides streaming chat completion clients. The default
// provider talks to a local Ollama server; an Anthropic-backed provider is
// available behind the same interface.
package llm

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/dinadyno/persona-chat/core"
)

// Sentinel errors let callers separate transport failures from malformed
// server output and from genuine model text. Check with errors.Is; never
// treat either as assistant output.
var (
	// ErrTransport covers connection and read failures, including non-OK
	// HTTP responses from the model server.
	ErrTransport = goerr.New("model server unreachable")

	// ErrProtocol covers responses the client cannot decode.
	ErrProtocol = goerr.New("malformed model server response")
)

// Provider issues a streaming chat completion. Tokens are passed to emit as
// they arrive; the return value is the accumulated full response text.
// On error, the returned text holds whatever tokens arrived before the
// failure (already emitted), and the error wraps ErrTransport or
// ErrProtocol.
type Provider interface {
	StreamChat(ctx context.Context, model string, messages []core.Message, emit func(token string)) (string, error)
}
