/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  An alternative to the flat files: every log lives in one database, one
  row per line, plus an audit table of sync runs. Useful when the data
  directory sits on storage where many small fsyncs are slow, or when the
  sync history should be queryable.

INTERFACES IMPLEMENTED:
  generic.LineStore: via Store.Log(name)

APPEND-ONLY ENFORCEMENT:
  - Lines are INSERTed with an autoincrement id that fixes their order
  - The only DELETE removes the single highest id of one log (RemoveLast)
  - No UPDATE statements on log_lines

KEY TABLES:
  log_lines:  (id, log, line, created_at)
  sync_runs:  one row per sync/bootstrap run with counts and errors

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so the API can read
  while a scheduled sync writes.

USAGE:
  store, err := sqlite.New("./db/fitness.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  calories := store.Log("mfpcl.dat")

SEE ALSO:
  - generic/store.go: LineStore contract
  - store/flatfile: Default file-per-log backend
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/tjwilli6/Fitness/generic"
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Log lines (append-only, RemoveLast excepted)
	CREATE TABLE IF NOT EXISTS log_lines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		log TEXT NOT NULL,
		line TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_log_lines_log_id
		ON log_lines(log, id);

	-- Sync runs (audit trail)
	CREATE TABLE IF NOT EXISTS sync_runs (
		id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		status TEXT NOT NULL,
		today TEXT NOT NULL,
		removed INTEGER DEFAULT 0,
		appended_calories INTEGER DEFAULT 0,
		appended_weight INTEGER DEFAULT 0,
		appended_runs INTEGER DEFAULT 0,
		errors TEXT,
		started_at TEXT NOT NULL,
		completed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_sync_runs_started
		ON sync_runs(started_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LINE STORE (generic.LineStore interface)
// =============================================================================

// Log returns the named log as a LineStore.
func (s *Store) Log(name string) generic.LineStore {
	return &lineLog{store: s, name: name}
}

type lineLog struct {
	store *Store
	name  string
}

func (l *lineLog) Name() string { return l.name }

// Append adds a line to the log.
func (l *lineLog) Append(ctx context.Context, line string) error {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	_, err := l.store.db.ExecContext(ctx,
		"INSERT INTO log_lines (log, line, created_at) VALUES (?, ?, ?)",
		l.name, line, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append line: %w", err)
	}
	return nil
}

// ReadAll returns every line of the log in insertion order.
func (l *lineLog) ReadAll(ctx context.Context) ([]string, error) {
	l.store.mu.RLock()
	defer l.store.mu.RUnlock()

	rows, err := l.store.db.QueryContext(ctx,
		"SELECT line FROM log_lines WHERE log = ? ORDER BY id ASC", l.name)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// RemoveLast deletes the highest-id line of the log.
func (l *lineLog) RemoveLast(ctx context.Context) (string, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()

	tx, err := l.store.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	var line string
	err = tx.QueryRowContext(ctx,
		"SELECT id, line FROM log_lines WHERE log = ? ORDER BY id DESC LIMIT 1", l.name,
	).Scan(&id, &line)
	if err == sql.ErrNoRows {
		return "", generic.ErrEmptyLog
	}
	if err != nil {
		return "", fmt.Errorf("failed to find last line: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM log_lines WHERE id = ?", id); err != nil {
		return "", fmt.Errorf("failed to remove last line: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return line, nil
}

// Exists checks whether the log has any lines.
func (l *lineLog) Exists(ctx context.Context) (bool, error) {
	l.store.mu.RLock()
	defer l.store.mu.RUnlock()

	var count int
	err := l.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM log_lines WHERE log = ?", l.name,
	).Scan(&count)
	return count > 0, err
}

// =============================================================================
// SYNC RUNS (audit trail)
// =============================================================================

// SyncRun records one bootstrap or sync pass.
type SyncRun struct {
	ID               string
	State            string // no_log, up_to_date, stale_final, stale_provisional
	Status           string // completed, partial, failed
	Today            time.Time
	Removed          int
	AppendedCalories int
	AppendedWeight   int
	AppendedRuns     int
	Errors           []string
	StartedAt        time.Time
	CompletedAt      *time.Time
}

// SaveSyncRun inserts or updates a sync run.
func (s *Store) SaveSyncRun(ctx context.Context, r SyncRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO sync_runs (id, state, status, today, removed,
			appended_calories, appended_weight, appended_runs, errors, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			removed = excluded.removed,
			appended_calories = excluded.appended_calories,
			appended_weight = excluded.appended_weight,
			appended_runs = excluded.appended_runs,
			errors = excluded.errors,
			completed_at = excluded.completed_at
	`

	var completedAt *string
	if r.CompletedAt != nil {
		s := r.CompletedAt.UTC().Format(time.RFC3339)
		completedAt = &s
	}

	_, err := s.db.ExecContext(ctx, query,
		r.ID, r.State, r.Status, r.Today.Format(generic.DateLayout), r.Removed,
		r.AppendedCalories, r.AppendedWeight, r.AppendedRuns,
		nullString(strings.Join(r.Errors, "\n")),
		r.StartedAt.UTC().Format(time.RFC3339), completedAt,
	)
	return err
}

// GetSyncRuns returns the most recent runs first. limit <= 0 means all.
func (s *Store) GetSyncRuns(ctx context.Context, limit int) ([]SyncRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, state, status, today, removed, appended_calories, appended_weight,
			appended_runs, errors, started_at, completed_at
		FROM sync_runs
		ORDER BY started_at DESC, rowid DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []SyncRun
	for rows.Next() {
		var r SyncRun
		var today, startedAt string
		var errs, completedAt sql.NullString
		if err := rows.Scan(
			&r.ID, &r.State, &r.Status, &today, &r.Removed, &r.AppendedCalories,
			&r.AppendedWeight, &r.AppendedRuns, &errs, &startedAt, &completedAt,
		); err != nil {
			return nil, err
		}

		r.Today, _ = time.Parse(generic.DateLayout, today)
		r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		if completedAt.Valid {
			t, _ := time.Parse(time.RFC3339, completedAt.String)
			r.CompletedAt = &t
		}
		if errs.Valid && errs.String != "" {
			r.Errors = strings.Split(errs.String, "\n")
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// Reset deletes all data (for development/testing only).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM log_lines; DELETE FROM sync_runs;")
	return err
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
