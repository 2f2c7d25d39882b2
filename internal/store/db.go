package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database that backs one origin's site.db.
type DB struct {
	*sql.DB
}

// Open creates a new SQLite connection with WAL mode and recommended pragmas.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &DB{db}, nil
}

// KeyCount returns the number of stored keys.
func (db *DB) KeyCount() (int64, error) {
	var count int64
	err := db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&count)
	return count, err
}

// UsedBytes returns the summed key and value length counted against the quota.
func (db *DB) UsedBytes() (int64, error) {
	var used int64
	err := db.QueryRow(`SELECT COALESCE(SUM(length(CAST(key AS BLOB)) + length(CAST(value AS BLOB))), 0) FROM kv`).Scan(&used)
	return used, err
}
