package chromem_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/dinadyno/persona-chat/core"
	"github.com/dinadyno/persona-chat/memory"
	chromemstore "github.com/dinadyno/persona-chat/memory/store/chromem"
)

// unit returns a unit vector pointing along the given axis.
func unit(axis int) []float32 {
	vec := make([]float32, 4)
	vec[axis] = 1
	return vec
}

func turnRecords(n int, base time.Time) []memory.Record {
	at := base.Add(time.Duration(n) * time.Minute)
	return []memory.Record{
		{
			ID:        fmt.Sprintf("msg_%s_user", at.Format(time.RFC3339Nano)),
			Content:   fmt.Sprintf("question %d", n),
			Role:      core.RoleUser,
			Timestamp: at,
			Embedding: unit(n % 4),
		},
		{
			ID:        fmt.Sprintf("msg_%s_asst", at.Add(time.Second).Format(time.RFC3339Nano)),
			Content:   fmt.Sprintf("answer %d", n),
			Role:      core.RoleAssistant,
			Timestamp: at.Add(time.Second),
			Embedding: unit((n + 1) % 4),
		},
	}
}

func TestAddQueryRoundTrip(t *testing.T) {
	store, err := chromemstore.New(t.TempDir())
	gt.NoError(t, err).Required()
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	recs := turnRecords(0, base)
	gt.NoError(t, store.Add(ctx, "dina_chat_history", recs)).Required()

	got, err := store.Query(ctx, "dina_chat_history", unit(0), 5)
	gt.NoError(t, err).Required()
	gt.Array(t, got).Length(2)

	byID := map[string]memory.Record{}
	for _, r := range got {
		byID[r.ID] = r
	}
	user := byID[recs[0].ID]
	gt.Value(t, user.Content).Equal("question 0")
	gt.Value(t, user.Role).Equal(core.RoleUser)
	gt.Bool(t, user.Timestamp.Equal(base)).True()
}

func TestQueryClampsToCollectionSize(t *testing.T) {
	store, err := chromemstore.New(t.TempDir())
	gt.NoError(t, err).Required()
	defer store.Close()

	ctx := context.Background()

	// Empty collection: k larger than the count must not fail.
	got, err := store.Query(ctx, "dina_chat_history", unit(0), 5)
	gt.NoError(t, err).Required()
	gt.Array(t, got).Length(0)

	gt.NoError(t, store.Add(ctx, "dina_chat_history", turnRecords(0, time.Now().UTC()))).Required()

	got, err = store.Query(ctx, "dina_chat_history", unit(0), 50)
	gt.NoError(t, err).Required()
	gt.Array(t, got).Length(2)
}

func TestAddDuplicateID(t *testing.T) {
	store, err := chromemstore.New(t.TempDir())
	gt.NoError(t, err).Required()
	defer store.Close()

	ctx := context.Background()
	recs := turnRecords(0, time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC))

	gt.NoError(t, store.Add(ctx, "dina_chat_history", recs)).Required()

	err = store.Add(ctx, "dina_chat_history", recs)
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, memory.ErrDuplicateID)).True()
}

func TestClearIsolatesCollections(t *testing.T) {
	store, err := chromemstore.New(t.TempDir())
	gt.NoError(t, err).Required()
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	gt.NoError(t, store.Add(ctx, "dina_chat_history", turnRecords(0, base))).Required()
	gt.NoError(t, store.Add(ctx, "dyno_chat_history", turnRecords(1, base))).Required()

	gt.NoError(t, store.Clear(ctx, "dina_chat_history")).Required()

	// Cleared collection is empty but immediately usable.
	got, err := store.Query(ctx, "dina_chat_history", unit(0), 5)
	gt.NoError(t, err).Required()
	gt.Array(t, got).Length(0)

	gt.NoError(t, store.Add(ctx, "dina_chat_history", turnRecords(2, base))).Required()

	// The other persona's memory is untouched.
	got, err = store.Query(ctx, "dyno_chat_history", unit(1), 5)
	gt.NoError(t, err).Required()
	gt.Array(t, got).Length(2)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	base := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	store, err := chromemstore.New(dir)
	gt.NoError(t, err).Required()
	gt.NoError(t, store.Add(ctx, "dina_chat_history", turnRecords(0, base))).Required()
	gt.NoError(t, store.Close()).Required()

	reopened, err := chromemstore.New(dir)
	gt.NoError(t, err).Required()
	defer reopened.Close()

	got, err := reopened.Query(ctx, "dina_chat_history", unit(0), 5)
	gt.NoError(t, err).Required()
	gt.Array(t, got).Length(2)
}
