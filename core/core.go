package core

import (
	"fmt"
	"strings"
)

// Persona identifies one of the two preset chat personas. Each persona is
// backed by its own local model and its own memory collection, so switching
// personas never mixes histories.
type Persona string

const (
	PersonaDina Persona = "Dina"
	PersonaDyno Persona = "Dyno"
)

// Personas returns the fixed set of available personas.
func Personas() []Persona {
	return []Persona{PersonaDina, PersonaDyno}
}

// ParsePersona resolves a user-supplied persona name, case-insensitively.
func ParsePersona(s string) (Persona, error) {
	for _, p := range Personas() {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown persona: %q", s)
}

// ModelName returns the local model name for this persona.
func (p Persona) ModelName() string {
	return strings.ToLower(string(p))
}

// CollectionName returns the name of the vector collection holding this
// persona's durable chat history.
func (p Persona) CollectionName() string {
	return p.ModelName() + "_chat_history"
}

func (p Persona) String() string {
	return string(p)
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single half of a chat turn as shown in the transcript.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
