package quotefed

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// historyTimeFormat is RFC 3339 with fixed-width nanoseconds. RFC3339Nano
// trims trailing fractional zeros, which breaks lexicographic ordering on
// the TEXT column; a fixed width keeps ORDER BY fetched_at chronological.
const historyTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryStore records accepted quotes in SQLite.
type HistoryStore struct {
	db *sql.DB
}

// HistoryItem is one recorded quote.
type HistoryItem struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Quote     string    `json:"quote"`
	Source    string    `json:"source"`
	FetchedAt time.Time `json:"fetched_at"`
}

// NewHistoryStore creates a history store with the given database path.
func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &HistoryStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the quotes table if it doesn't exist.
func (h *HistoryStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS quotes (
		quote_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		quote TEXT NOT NULL,
		source TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	);
	`

	_, err := h.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (h *HistoryStore) Close() error {
	return h.db.Close()
}

// Add records an accepted quote and returns the stored item. Source names
// where the quote came from (the wiki API base URL or a feed URL).
func (h *HistoryStore) Add(result *QuoteResult, source string) (*HistoryItem, error) {
	item := &HistoryItem{
		ID:        uuid.New(),
		Title:     result.Title,
		Quote:     result.Quote,
		Source:    source,
		FetchedAt: time.Now(),
	}

	query := `
		INSERT INTO quotes (quote_id, title, quote, source, fetched_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := h.db.Exec(query,
		item.ID.String(),
		item.Title,
		item.Quote,
		item.Source,
		item.FetchedAt.Format(historyTimeFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert quote: %w", err)
	}

	return item, nil
}

// List returns recorded quotes, most recent first, with pagination.
func (h *HistoryStore) List(limit, offset int) ([]HistoryItem, error) {
	query := `
		SELECT quote_id, title, quote, source, fetched_at
		FROM quotes
		ORDER BY fetched_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := h.db.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	var items []HistoryItem
	for rows.Next() {
		var item HistoryItem
		var idStr, fetchedAtStr string

		if err := rows.Scan(&idStr, &item.Title, &item.Quote, &item.Source, &fetchedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}

		item.ID, _ = uuid.Parse(idStr)
		item.FetchedAt, _ = time.Parse(time.RFC3339Nano, fetchedAtStr)
		items = append(items, item)
	}

	return items, nil
}

// Count returns the number of recorded quotes.
func (h *HistoryStore) Count() (int, error) {
	var count int
	if err := h.db.QueryRow("SELECT COUNT(*) FROM quotes").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count quotes: %w", err)
	}
	return count, nil
}

// Delete removes a recorded quote by ID.
func (h *HistoryStore) Delete(id uuid.UUID) error {
	result, err := h.db.Exec("DELETE FROM quotes WHERE quote_id = ?", id.String())
	if err != nil {
		return fmt.Errorf("failed to delete quote: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("quote not found")
	}

	return nil
}
