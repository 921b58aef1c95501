// Package sqlite provides a SQLite-backed implementation of the storage.SnapshotStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/pgstay/internal/sheets"
	"github.com/mmynk/pgstay/internal/storage"
)

// Ensure SQLiteStore implements storage.SnapshotStore
var _ storage.SnapshotStore = (*SQLiteStore)(nil)

// SQLiteStore implements storage.SnapshotStore using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single writer avoids SQLITE_BUSY between concurrent collection reads.
	db.SetMaxOpenConns(1)

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSnapshot stores the records of a sheet as a JSON document, replacing
// any earlier snapshot.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, sheet string, records []sheets.Record) error {
	if records == nil {
		records = []sheets.Record{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (sheet, payload, record_count, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(sheet) DO UPDATE SET payload = excluded.payload,
		     record_count = excluded.record_count, fetched_at = excluded.fetched_at`,
		sheet, string(payload), len(records), s.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot retrieves the snapshot of a sheet. JSON decoding turns lists
// into []any and numbers into float64; sheets.Unmarshal accepts both.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context, sheet string) (*storage.Snapshot, error) {
	var payload string
	snap := &storage.Snapshot{Sheet: sheet}
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, fetched_at FROM snapshots WHERE sheet = ?",
		sheet,
	).Scan(&payload, &snap.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &snap.Records); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot of %s: %w", sheet, err)
	}
	return snap, nil
}
