package sqlite

import "database/sql"

// schema sets up the snapshot table. It runs on startup to ensure tables exist.
const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    sheet TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    record_count INTEGER NOT NULL,
    fetched_at INTEGER NOT NULL
);
`

// runMigrations executes the schema migrations.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
