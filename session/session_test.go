package session_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/dinadyno/persona-chat/core"
	"github.com/dinadyno/persona-chat/session"
)

func TestPersonaIsolation(t *testing.T) {
	m := session.NewManager()

	m.Append(core.PersonaDina, core.Message{Role: core.RoleUser, Content: "hi dina"})
	m.Append(core.PersonaDyno, core.Message{Role: core.RoleUser, Content: "hi dyno"})
	m.Append(core.PersonaDina, core.Message{Role: core.RoleAssistant, Content: "hello!"})

	dina := m.Get(core.PersonaDina)
	gt.Array(t, dina).Length(2)
	gt.Value(t, dina[0].Content).Equal("hi dina")
	gt.Value(t, dina[1].Content).Equal("hello!")

	dyno := m.Get(core.PersonaDyno)
	gt.Array(t, dyno).Length(1)
	gt.Value(t, dyno[0].Content).Equal("hi dyno")
}

func TestClearOnlyTargetPersona(t *testing.T) {
	m := session.NewManager()
	m.Append(core.PersonaDina, core.Message{Role: core.RoleUser, Content: "a"})
	m.Append(core.PersonaDyno, core.Message{Role: core.RoleUser, Content: "b"})

	m.Clear(core.PersonaDina)

	gt.Array(t, m.Get(core.PersonaDina)).Length(0)
	gt.Array(t, m.Get(core.PersonaDyno)).Length(1)
}

func TestGetReturnsCopy(t *testing.T) {
	m := session.NewManager()
	m.Append(core.PersonaDina, core.Message{Role: core.RoleUser, Content: "original"})

	got := m.Get(core.PersonaDina)
	got[0].Content = "mutated"

	gt.Value(t, m.Get(core.PersonaDina)[0].Content).Equal("original")
}
