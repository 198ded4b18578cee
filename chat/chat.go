// Package chat orchestrates a single conversational turn: recall related
// past turns, stream the model's response, then persist both halves of the
// turn to durable memory and the session transcript.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dinadyno/persona-chat/core"
	"github.com/dinadyno/persona-chat/llm"
	"github.com/dinadyno/persona-chat/session"
)

// Failure texts shown in place of a response when the model call fails.
// They are displayed and kept in the session transcript, but never written
// to durable memory.
const (
	connectFailureText  = "Could not reach the model server. Make sure Ollama is running and try again."
	protocolFailureText = "The model server sent something unexpected. Try again."
)

// Recaller is the durable conversational memory used by the orchestrator.
// *memory.Recall implements it.
type Recaller interface {
	Retrieve(ctx context.Context, persona core.Persona, query string) ([]core.Message, error)
	RecordTurn(ctx context.Context, persona core.Persona, userText, assistantText string, at time.Time) error
	Clear(ctx context.Context, persona core.Persona) error
}

// binding fixes a persona's model and memory wiring for the session.
type binding struct {
	model      string
	collection string
}

// Orchestrator runs chat turns. Per-persona bindings are built once at
// construction, so turn handling never derives state from ad hoc key
// lookups.
type Orchestrator struct {
	provider llm.Provider
	recall   Recaller
	sessions *session.Manager
	personas map[core.Persona]binding
}

// New creates an orchestrator over the given provider and memory.
func New(provider llm.Provider, recall Recaller, sessions *session.Manager) *Orchestrator {
	personas := make(map[core.Persona]binding, len(core.Personas()))
	for _, p := range core.Personas() {
		personas[p] = binding{model: p.ModelName(), collection: p.CollectionName()}
	}
	return &Orchestrator{
		provider: provider,
		recall:   recall,
		sessions: sessions,
		personas: personas,
	}
}

// TurnResult reports how a turn ended. A turn "succeeds" whenever something
// was displayed; failures along the way are carried here instead of
// aborting the flow.
type TurnResult struct {
	// Response is the full displayed text: the model's response, or a
	// failure text when the model call failed.
	Response string

	// ModelErr is set when the model call failed (llm.ErrTransport or
	// llm.ErrProtocol). The failure text was displayed and kept in the
	// session, but not persisted.
	ModelErr error

	// PersistErr is set when the durable write failed after a successful
	// generation. The session keeps the turn; durable memory lost it.
	PersistErr error
}

// Turn runs one user turn for the persona, forwarding response tokens to
// emit as they arrive.
func (o *Orchestrator) Turn(ctx context.Context, persona core.Persona, input string, emit func(token string)) (*TurnResult, error) {
	b, ok := o.personas[persona]
	if !ok {
		return nil, fmt.Errorf("unknown persona: %q", persona)
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty input")
	}

	o.sessions.Append(persona, core.Message{Role: core.RoleUser, Content: input})

	// Retrieval failure degrades to an empty context; the turn proceeds
	// with only the new user message.
	recalled, err := o.recall.Retrieve(ctx, persona, input)
	if err != nil {
		log.Printf("[CHAT] Memory retrieval failed for %s: %v", persona, err)
		recalled = nil
	}
	apiMessages := append(recalled, core.Message{Role: core.RoleUser, Content: input})

	at := time.Now()
	response, err := o.provider.StreamChat(ctx, b.model, apiMessages, emit)
	if err != nil {
		log.Printf("[CHAT] Model call failed for %s: %v", persona, err)
		failure := failureText(err)
		emit(failure)

		displayed := response
		if displayed != "" {
			displayed += "\n"
		}
		displayed += failure

		o.sessions.Append(persona, core.Message{Role: core.RoleAssistant, Content: displayed})
		return &TurnResult{Response: displayed, ModelErr: err}, nil
	}

	o.sessions.Append(persona, core.Message{Role: core.RoleAssistant, Content: response})

	result := &TurnResult{Response: response}
	if err := o.recall.RecordTurn(ctx, persona, input, response, at); err != nil {
		// Reported but not rolled back: the user already saw the turn.
		log.Printf("[CHAT] Failed to persist turn for %s: %v", persona, err)
		result.PersistErr = err
	}
	return result, nil
}

// ClearMemory drops the persona's durable collection (recreated empty by
// the store) and clears its session transcript. The two effects are not
// atomic with each other or with concurrent reads.
func (o *Orchestrator) ClearMemory(ctx context.Context, persona core.Persona) error {
	if _, ok := o.personas[persona]; !ok {
		return fmt.Errorf("unknown persona: %q", persona)
	}
	if err := o.recall.Clear(ctx, persona); err != nil {
		return fmt.Errorf("clear %s memory: %w", persona, err)
	}
	o.sessions.Clear(persona)
	return nil
}

// History returns the persona's session transcript for display.
func (o *Orchestrator) History(persona core.Persona) []core.Message {
	return o.sessions.Get(persona)
}

func failureText(err error) string {
	if errors.Is(err, llm.ErrProtocol) {
		return protocolFailureText
	}
	return connectFailureText
}
