// Package session holds the per-persona transcript for the lifetime of the
// process. This is display state only; durable memory lives in the vector
// store. Restarting the process resets it.
package session

import (
	"sync"

	"github.com/dinadyno/persona-chat/core"
)

// Manager keeps one ordered message list per persona. Personas never share
// a list; switching the active persona leaves the inactive list untouched.
type Manager struct {
	mu        sync.RWMutex
	histories map[core.Persona][]core.Message
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{
		histories: make(map[core.Persona][]core.Message),
	}
}

// Get returns a copy of the persona's transcript in display order.
func (m *Manager) Get(persona core.Persona) []core.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.histories[persona]
	out := make([]core.Message, len(history))
	copy(out, history)
	return out
}

// Append adds a message to the end of the persona's transcript.
func (m *Manager) Append(persona core.Persona, msg core.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histories[persona] = append(m.histories[persona], msg)
}

// Clear empties the persona's transcript.
func (m *Manager) Clear(persona core.Persona) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.histories, persona)
}
