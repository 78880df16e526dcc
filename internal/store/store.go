// Package store provides a SQLite-backed history of pipeline runs. Every
// stage outcome is recorded per user, so operators can see why a run stopped
// early and the HTTP API can expose recent activity.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver
)

// Stage identifies a step of the learning pipeline.
type Stage string

const (
	// StageProfile is the profile-analysis step.
	StageProfile Stage = "profile"
	// StageResearch is the topic-research step.
	StageResearch Stage = "research"
	// StageFlashcards is the flashcard-generation step.
	StageFlashcards Stage = "flashcards"
	// StagePersist is the final save into the knowledge base.
	StagePersist Stage = "persist"
)

// Status is the outcome of a pipeline stage.
type Status string

const (
	// StatusCompleted means the stage produced usable output.
	StatusCompleted Status = "completed"
	// StatusSkipped means the stage was not run because an earlier stage
	// produced a degenerate result.
	StatusSkipped Status = "skipped"
	// StatusFailed means the stage ran and failed.
	StatusFailed Status = "failed"
)

// Run is one recorded stage outcome.
type Run struct {
	// UserID is the user whose pipeline ran.
	UserID string `json:"user_id"`
	// Stage is the pipeline step this record describes.
	Stage Stage `json:"stage"`
	// Status is the stage outcome.
	Status Status `json:"status"`
	// Detail carries a human-readable note (skip reason, error text).
	Detail string `json:"detail,omitempty"`
	// CreatedAt is when the record was persisted.
	CreatedAt time.Time `json:"created_at"`
}

// RunStore persists and retrieves pipeline stage outcomes.
// Implementations must be safe for concurrent use.
type RunStore interface {
	// Append persists one stage outcome for the given user.
	Append(ctx context.Context, userID string, stage Stage, status Status, detail string) error
	// Recent returns the most recent n records for the user, newest-first.
	// If fewer than n records exist, all are returned.
	Recent(ctx context.Context, userID string, n int) ([]Run, error)
	// Close releases any resources held by the store.
	Close() error
}

// SQLiteStore is a RunStore backed by a local SQLite database.
type SQLiteStore struct {
	// db is the underlying database connection pool.
	db *sql.DB
}

// DefaultDBPath returns the default path for the run-history database.
// It resolves to ~/.kompow/runs.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".kompow")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("store: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "runs.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id      TEXT    NOT NULL,
    stage        TEXT    NOT NULL CHECK(stage IN ('profile','research','flashcards','persist')),
    status       TEXT    NOT NULL CHECK(status IN ('completed','skipped','failed')),
    detail       TEXT    NOT NULL DEFAULT '',
    created_at   INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_pipeline_runs_user_created
    ON pipeline_runs (user_id, created_at);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Append persists one stage outcome for the given user.
func (s *SQLiteStore) Append(ctx context.Context, userID string, stage Stage, status Status, detail string) error {
	const q = `INSERT INTO pipeline_runs (user_id, stage, status, detail, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, userID, string(stage), string(status), detail, time.Now().Unix()); err != nil {
		return fmt.Errorf("store: append: %w", err)
	}
	return nil
}

// Recent returns the most recent n records for the user, newest-first.
func (s *SQLiteStore) Recent(ctx context.Context, userID string, n int) ([]Run, error) {
	const q = `
SELECT stage, status, detail, created_at
FROM   pipeline_runs
WHERE  user_id = ?
ORDER  BY created_at DESC, id DESC
LIMIT  ?`

	rows, err := s.db.QueryContext(ctx, q, userID, n)
	if err != nil {
		return nil, fmt.Errorf("store: recent: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r := Run{UserID: userID}
		var ts int64
		var stage, status string
		if err := rows.Scan(&stage, &status, &r.Detail, &ts); err != nil {
			return nil, fmt.Errorf("store: recent scan: %w", err)
		}
		r.Stage = Stage(stage)
		r.Status = Status(status)
		r.CreatedAt = time.Unix(ts, 0)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: recent rows: %w", err)
	}
	return runs, nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}
