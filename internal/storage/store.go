// Package storage provides abstractions for local persistence.
package storage

import (
	"context"

	"github.com/mmynk/pgstay/internal/sheets"
)

// Snapshot is the last successful read of a sheet.
type Snapshot struct {
	Sheet   string
	Records []sheets.Record

	// FetchedAt is the Unix timestamp of the live read.
	FetchedAt int64
}

// SnapshotStore keeps the last-known-good contents of each sheet so reads can
// be served after a restart while the Sheets API is unreachable.
// This abstraction allows swapping storage backends without changing the
// repository layer.
type SnapshotStore interface {
	// SaveSnapshot replaces the stored snapshot of a sheet.
	SaveSnapshot(ctx context.Context, sheet string, records []sheets.Record) error

	// LoadSnapshot returns the stored snapshot of a sheet.
	// Returns nil and no error if none was saved.
	LoadSnapshot(ctx context.Context, sheet string) (*Snapshot, error)

	// Close releases any resources held by the store.
	Close() error
}
