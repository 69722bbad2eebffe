package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/marquee/internal/domain"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Store implements domain.CounterStore using SQLite.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	closed bool
	now    func() time.Time
}

// New creates a new SQLite-based counter store.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open popularity database: %w", err)
	}
	return newWithDB(db)
}

// NewInMemory creates a new in-memory SQLite store (useful for testing).
func NewInMemory() (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// Every pooled connection would get its own private :memory: database.
	db.SetMaxOpenConns(1)
	return newWithDB(db)
}

func newWithDB(db *sql.DB) (*Store, error) {
	store := &Store{db: db, now: time.Now}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize popularity database: %w", err)
	}
	return store, nil
}

// initialize creates the necessary tables and indexes.
func (s *Store) initialize() error {
	schema := `
		CREATE TABLE IF NOT EXISTS search_popularity (
			id TEXT PRIMARY KEY,
			search_term TEXT NOT NULL,
			item_id TEXT NOT NULL,
			item_title TEXT NOT NULL,
			poster_url TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 1 CHECK (count >= 1),
			updated_at INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_search_popularity_key
			ON search_popularity(search_term, item_id);
		CREATE INDEX IF NOT EXISTS idx_search_popularity_count
			ON search_popularity(count DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

const selectColumns = "id, search_term, item_id, item_title, poster_url, count, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.SearchPopularityRecord, error) {
	var (
		rec       domain.SearchPopularityRecord
		updatedAt int64
	)
	if err := row.Scan(&rec.ID, &rec.SearchTerm, &rec.ItemID, &rec.ItemTitle, &rec.PosterURL, &rec.Count, &updatedAt); err != nil {
		return nil, err
	}
	rec.UpdatedAt = time.UnixMilli(updatedAt)
	return &rec, nil
}

// FindByKey returns the record for (searchTerm, itemID), if any.
func (s *Store) FindByKey(ctx context.Context, searchTerm, itemID string) (*domain.SearchPopularityRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, false, domain.ErrStoreClosed
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM search_popularity WHERE search_term = ? AND item_id = ?",
		searchTerm, itemID,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find popularity record: %w", err)
	}
	return rec, true, nil
}

// CreateRecord inserts a new record with count 1.
func (s *Store) CreateRecord(ctx context.Context, fields domain.NewPopularityRecord) (*domain.SearchPopularityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrStoreClosed
	}

	rec := &domain.SearchPopularityRecord{
		ID:         uuid.New().String(),
		SearchTerm: fields.SearchTerm,
		ItemID:     fields.ItemID,
		ItemTitle:  fields.ItemTitle,
		PosterURL:  fields.PosterURL,
		Count:      1,
		UpdatedAt:  time.UnixMilli(s.now().UnixMilli()),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO search_popularity ("+selectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.SearchTerm, rec.ItemID, rec.ItemTitle, rec.PosterURL, rec.Count, rec.UpdatedAt.UnixMilli(),
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("popularity record (%q, %q): %w", fields.SearchTerm, fields.ItemID, domain.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create popularity record: %w", err)
	}
	return rec, nil
}

// IncrementCount adds one to the record's count. SQLite applies the
// increment atomically, so concurrent local writers never lose a count.
func (s *Store) IncrementCount(ctx context.Context, recordID string) (*domain.SearchPopularityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrStoreClosed
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE search_popularity SET count = count + 1, updated_at = ? WHERE id = ?",
		s.now().UnixMilli(), recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to increment popularity record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("popularity record %s: %w", recordID, domain.ErrNotFound)
	}

	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM search_popularity WHERE id = ?",
		recordID,
	)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("failed to read popularity record: %w", err)
	}
	return rec, nil
}

// TopSearches returns records ordered by count, most recent first on ties.
func (s *Store) TopSearches(ctx context.Context, limit int) ([]domain.SearchPopularityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, domain.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM search_popularity ORDER BY count DESC, updated_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list popular searches: %w", err)
	}
	defer rows.Close()

	var out []domain.SearchPopularityRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan popularity record: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Close closes the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(se.Error(), "UNIQUE")
	}
	return false
}
