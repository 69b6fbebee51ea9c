// Package sqlite provides SQLite-based persistent storage for VitalQuest.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Key-value store for the engagement snapshot and bookkeeping
		`CREATE TABLE IF NOT EXISTS engagement (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Activity ledger, one row per record
		`CREATE TABLE IF NOT EXISTS activities (
			id       TEXT PRIMARY KEY,
			type     TEXT NOT NULL,
			date     INTEGER NOT NULL,
			value    REAL NOT NULL,
			unit     TEXT NOT NULL DEFAULT '',
			source   TEXT NOT NULL DEFAULT 'manual',
			metadata TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_date ON activities(date)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_type ON activities(type, date)`,

		// Daily summaries keyed by local calendar day (YYYY-MM-DD)
		`CREATE TABLE IF NOT EXISTS daily_summaries (
			day                TEXT PRIMARY KEY,
			date               INTEGER NOT NULL,
			steps              REAL NOT NULL DEFAULT 0,
			exercise_minutes   REAL NOT NULL DEFAULT 0,
			meditation_minutes REAL NOT NULL DEFAULT 0,
			water_glasses      REAL NOT NULL DEFAULT 0,
			meals_logged       INTEGER NOT NULL DEFAULT 0,
			sleep_hours        REAL NOT NULL DEFAULT 0,
			quests_completed   INTEGER NOT NULL DEFAULT 0,
			xp_earned          INTEGER NOT NULL DEFAULT 0,
			gold_earned        INTEGER NOT NULL DEFAULT 0,
			streak_maintained  BOOLEAN DEFAULT 0
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Engagement Key-Value ───────────────────────────────────────────────────

// setEngagement stores an engagement key-value pair.
func setEngagement(ex execer, key, value string) error {
	_, err := ex.Exec(
		`INSERT INTO engagement (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
		key, value,
	)
	return err
}

// getEngagement retrieves an engagement value by key.
// Returns "" if key not found.
func getEngagement(q queryer, key string) (string, error) {
	var value string
	err := q.QueryRow(`SELECT value FROM engagement WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
}
