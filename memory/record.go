package memory

import (
	"fmt"
	"time"

	"github.com/dinadyno/persona-chat/core"
)

// assistantOffset pushes the assistant record's timestamp past the user
// record's so the pair never ties on coarse-resolution clocks.
const assistantOffset = time.Second

// Record is one stored half of a chat turn. Records are immutable once
// written and are deleted only by clearing their whole collection.
type Record struct {
	ID        string
	Content   string
	Role      string
	Timestamp time.Time
	Embedding []float32
}

// NewTurnRecords builds the user and assistant records for a completed turn.
// The user record carries the turn time; the assistant record is offset
// forward by one second, keeping user < assistant within the turn.
func NewTurnRecords(userText, assistantText string, at time.Time) (Record, Record) {
	assistantAt := at.Add(assistantOffset)
	user := Record{
		ID:        recordID(at, "user"),
		Content:   userText,
		Role:      core.RoleUser,
		Timestamp: at,
	}
	assistant := Record{
		ID:        recordID(assistantAt, "asst"),
		Content:   assistantText,
		Role:      core.RoleAssistant,
		Timestamp: assistantAt,
	}
	return user, assistant
}

func recordID(at time.Time, suffix string) string {
	return fmt.Sprintf("msg_%s_%s", at.Format(time.RFC3339Nano), suffix)
}
