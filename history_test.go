package quotefed

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper: create a history store backed by a temp database.
func setupTestHistory(t *testing.T) *HistoryStore {
	store, err := NewHistoryStore(t.TempDir() + "/history.db")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// TestHistoryStore_AddAndList verifies the round trip through SQLite.
func TestHistoryStore_AddAndList(t *testing.T) {
	store := setupTestHistory(t)

	item, err := store.Add(&QuoteResult{
		Title: "Hamlet",
		Quote: "To be or not to be, that is the question.",
	}, DefaultBaseURL)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, item.ID)

	items, err := store.List(10, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, item.ID, items[0].ID)
	assert.Equal(t, "Hamlet", items[0].Title)
	assert.Equal(t, "To be or not to be, that is the question.", items[0].Quote)
	assert.Equal(t, DefaultBaseURL, items[0].Source)
	assert.False(t, items[0].FetchedAt.IsZero())
}

// TestHistoryStore_ListOrderAndPaging verifies most-recent-first ordering
// with limit and offset.
func TestHistoryStore_ListOrderAndPaging(t *testing.T) {
	store := setupTestHistory(t)

	for _, quote := range []string{"first", "second", "third"} {
		_, err := store.Add(&QuoteResult{Title: "T", Quote: quote}, "test")
		require.NoError(t, err)
	}

	items, err := store.List(2, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "third", items[0].Quote)
	assert.Equal(t, "second", items[1].Quote)

	items, err = store.List(2, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "first", items[0].Quote)
}

// TestHistoryStore_TimestampFormatSortsChronologically verifies the stored
// text timestamps order correctly even when fractional seconds end in
// zeros, where a trimmed format would sort lexicographically out of order.
func TestHistoryStore_TimestampFormatSortsChronologically(t *testing.T) {
	store := setupTestHistory(t)

	base := time.Date(2026, 8, 29, 12, 0, 5, 0, time.UTC)
	times := []struct {
		quote string
		at    time.Time
	}{
		{"oldest", base.Add(500 * time.Millisecond)},  // .5s, trailing zeros
		{"middle", base.Add(510 * time.Millisecond)},  // .51s
		{"newest", base.Add(1500 * time.Millisecond)}, // next second, .5s
	}

	for _, tt := range times {
		_, err := store.db.Exec(
			"INSERT INTO quotes (quote_id, title, quote, source, fetched_at) VALUES (?, ?, ?, ?, ?)",
			uuid.NewString(), "T", tt.quote, "test", tt.at.Format(historyTimeFormat),
		)
		require.NoError(t, err)
	}

	items, err := store.List(10, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "newest", items[0].Quote)
	assert.Equal(t, "middle", items[1].Quote)
	assert.Equal(t, "oldest", items[2].Quote)
	assert.Equal(t, times[0].at, items[2].FetchedAt.UTC())
}

// TestHistoryStore_Count verifies counting.
func TestHistoryStore_Count(t *testing.T) {
	store := setupTestHistory(t)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = store.Add(&QuoteResult{Title: "T", Quote: "q"}, "test")
	require.NoError(t, err)

	count, err = store.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// TestHistoryStore_Delete verifies deletion and the not-found case.
func TestHistoryStore_Delete(t *testing.T) {
	store := setupTestHistory(t)

	item, err := store.Add(&QuoteResult{Title: "T", Quote: "q"}, "test")
	require.NoError(t, err)

	require.NoError(t, store.Delete(item.ID))

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	err = store.Delete(uuid.New())
	assert.Error(t, err)
}
