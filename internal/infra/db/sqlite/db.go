package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens (or creates) the sqlite database and ensures the schema.
// Used for local development and tests; production runs mysql or postgres.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return db, nil
}

func createTables(db *sql.DB) error {
	const query = `
	CREATE TABLE IF NOT EXISTS review_assets (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		filename TEXT NOT NULL,
		content_type TEXT NOT NULL,
		kind TEXT NOT NULL,
		size_bytes INTEGER NOT NULL,
		url TEXT NOT NULL DEFAULT '',
		page_count INTEGER NOT NULL DEFAULT 0,
		duration_seconds REAL NOT NULL DEFAULT 0,
		uploaded_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS compliance_reviews (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		asset_id TEXT NOT NULL,
		asset_kind TEXT NOT NULL,
		asset_url TEXT NOT NULL DEFAULT '',
		triggered_at DATETIME NOT NULL,
		status TEXT NOT NULL,
		high INTEGER NOT NULL DEFAULT 0,
		medium INTEGER NOT NULL DEFAULT 0,
		low INTEGER NOT NULL DEFAULT 0,
		issues_total INTEGER NOT NULL DEFAULT 0,
		issues_json TEXT NOT NULL DEFAULT '[]',
		summary TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS review_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tenant_id TEXT NOT NULL,
		review_id TEXT NOT NULL,
		asset_kind TEXT NOT NULL DEFAULT '-',
		phase TEXT NOT NULL DEFAULT '-',
		message TEXT NOT NULL,
		details_json TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reviews_tenant_time ON compliance_reviews(tenant_id, triggered_at);
	CREATE INDEX IF NOT EXISTS idx_assets_tenant_time ON review_assets(tenant_id, uploaded_at);
	`
	_, err := db.Exec(query)
	return err
}
