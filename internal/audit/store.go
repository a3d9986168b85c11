// Package audit persists a record of every extraction the service
// performs, so a matter's review activity can be reconstructed later.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/matterhub/redline/internal/revision"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS extractions (
    id TEXT PRIMARY KEY,
    document_id TEXT NOT NULL,
    item_id TEXT,
    source TEXT NOT NULL,
    total_changes INTEGER NOT NULL,
    insertions INTEGER NOT NULL,
    deletions INTEGER NOT NULL,
    modifications INTEGER NOT NULL,
    format_changes INTEGER NOT NULL,
    authors TEXT NOT NULL,
    status TEXT NOT NULL,
    duration_ms INTEGER NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_extractions_document ON extractions(document_id);
CREATE INDEX IF NOT EXISTS idx_extractions_created ON extractions(created_at DESC);
`

// timeLayout is fixed-width UTC so created_at strings sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Entry is one recorded extraction.
type Entry struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	ItemID        string    `json:"item_id,omitempty"`
	Source        string    `json:"source"`
	TotalChanges  int       `json:"total_changes"`
	Insertions    int       `json:"insertions"`
	Deletions     int       `json:"deletions"`
	Modifications int       `json:"modifications"`
	FormatChanges int       `json:"format_changes"`
	Authors       []string  `json:"authors"`
	Status        string    `json:"status"`
	DurationMs    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewEntry seeds an entry from an extraction's summary.
func NewEntry(documentID, itemID, source string, sum revision.ChangesSummary) Entry {
	return Entry{
		DocumentID:    documentID,
		ItemID:        itemID,
		Source:        source,
		TotalChanges:  sum.TotalChanges,
		Insertions:    sum.Insertions,
		Deletions:     sum.Deletions,
		Modifications: sum.Modifications,
		FormatChanges: sum.FormatChanges,
		Authors:       sum.Authors,
		Status:        "ok",
	}
}

// Store keeps extraction records in SQLite.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens or creates the audit database at path. Use ":memory:" for
// an in-process store.
func Open(path string, log *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	// One pooled connection: SQLite serializes writers anyway, and
	// :memory: stores live per connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init audit schema: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Record inserts an entry, assigning ID and CreatedAt when unset.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.Authors == nil {
		e.Authors = []string{}
	}
	authors, err := json.Marshal(e.Authors)
	if err != nil {
		return fmt.Errorf("marshal authors: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO extractions (id, document_id, item_id, source, total_changes, insertions, deletions, modifications, format_changes, authors, status, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.DocumentID, e.ItemID, e.Source, e.TotalChanges, e.Insertions, e.Deletions,
		e.Modifications, e.FormatChanges, string(authors), e.Status, e.DurationMs,
		e.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record extraction: %w", err)
	}
	return nil
}

// Recent returns the newest entries, optionally filtered by document.
func (s *Store) Recent(ctx context.Context, documentID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, document_id, item_id, source, total_changes, insertions, deletions, modifications, format_changes, authors, status, duration_ms, created_at
		FROM extractions`
	var args []any
	if documentID != "" {
		query += " WHERE document_id = ?"
		args = append(args, documentID)
	}
	query += " ORDER BY created_at DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var itemID sql.NullString
		var authors, createdAt string
		if err := rows.Scan(&e.ID, &e.DocumentID, &itemID, &e.Source, &e.TotalChanges,
			&e.Insertions, &e.Deletions, &e.Modifications, &e.FormatChanges,
			&authors, &e.Status, &e.DurationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan extraction: %w", err)
		}
		if itemID.Valid {
			e.ItemID = itemID.String
		}
		if err := json.Unmarshal([]byte(authors), &e.Authors); err != nil {
			return nil, fmt.Errorf("decode authors for %s: %w", e.ID, err)
		}
		if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than the retention window and reports how
// many went.
func (s *Store) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention).Format(timeLayout)
	res, err := s.db.ExecContext(ctx, "DELETE FROM extractions WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune extractions: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.log.Info("pruned audit entries", "removed", removed)
	}
	return removed, nil
}

// PruneLoop prunes expired entries on a fixed interval until ctx is
// cancelled. Run it in its own goroutine.
func (s *Store) PruneLoop(ctx context.Context, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Prune(ctx, retention); err != nil {
				s.log.Warn("audit prune failed", "error", err)
			}
		}
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}
