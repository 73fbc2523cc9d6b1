// Package history keeps a SQLite record of past searches: their parameters,
// outcome, matched paths, skipped directories and worker failures.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/pfind/internal/models"
)

var (
	// ErrRunNotFound is returned when no run matches an ID or ID prefix.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousID is returned when an ID prefix matches several runs.
	ErrAmbiguousID = errors.New("run ID prefix is ambiguous")
)

// Store manages the SQLite database of past searches
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the database at dbPath and applies
// pending migrations. ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		// busy_timeout in the DSN applies to every pooled connection
		dsn = dbPath + "?_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// execWithRetry executes a statement with exponential backoff on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !isLocked(err) {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

func isLocked(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores a finished run and all its details in one transaction.
// A run without an ID is assigned a new UUID.
func (s *Store) RecordRun(ctx context.Context, run *models.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, host, root, term, workers, matches, failed_workers, status, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Host,
		run.Root,
		run.Term,
		run.Workers,
		run.Matches,
		run.FailedWorkers,
		run.Status,
		run.StartedAt.UTC(),
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if err := insertEach(ctx, tx, `INSERT INTO run_matches (run_id, path) VALUES (?, ?)`, len(run.MatchPaths),
		func(i int) []any { return []any{run.ID, run.MatchPaths[i]} }); err != nil {
		return fmt.Errorf("insert matches: %w", err)
	}
	if err := insertEach(ctx, tx, `INSERT INTO run_skipped (run_id, path, reason) VALUES (?, ?, ?)`, len(run.Skipped),
		func(i int) []any { return []any{run.ID, run.Skipped[i].Path, run.Skipped[i].Reason} }); err != nil {
		return fmt.Errorf("insert skipped directories: %w", err)
	}
	if err := insertEach(ctx, tx, `INSERT INTO run_failures (run_id, worker_id, message) VALUES (?, ?, ?)`, len(run.Failures),
		func(i int) []any { return []any{run.ID, run.Failures[i].WorkerID, run.Failures[i].Message} }); err != nil {
		return fmt.Errorf("insert worker failures: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// insertEach runs one prepared statement n times.
func insertEach(ctx context.Context, tx *sql.Tx, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return nil
}

const runColumns = `id, host, root, term, workers, matches, failed_workers, status, started_at, duration_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	run := &models.Run{}
	var durationMs int64
	err := row.Scan(
		&run.ID,
		&run.Host,
		&run.Root,
		&run.Term,
		&run.Workers,
		&run.Matches,
		&run.FailedWorkers,
		&run.Status,
		&run.StartedAt,
		&durationMs,
	)
	if err != nil {
		return nil, err
	}
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return run, nil
}

// ListRuns returns up to limit runs, newest first, without their detail
// rows. A limit <= 0 returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run with the given ID, or the single run whose ID
// starts with it, together with its matches, skipped directories and
// worker failures.
func (s *Store) GetRun(ctx context.Context, id string) (*models.Run, error) {
	if id == "" {
		return nil, ErrRunNotFound
	}

	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if run, err = s.getRunByPrefix(ctx, id); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("query run %s: %w", id, err)
	}

	if err := s.loadDetails(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *Store) getRunByPrefix(ctx context.Context, prefix string) (*models.Run, error) {
	// Escape LIKE wildcards; IDs are UUIDs but the argument is user input
	pattern := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, pattern)
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", prefix, err)
	}
	defer rows.Close()

	var found []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
}

func (s *Store) loadDetails(ctx context.Context, run *models.Run) error {
	matches, err := s.db.QueryContext(ctx, `SELECT path FROM run_matches WHERE run_id = ? ORDER BY path`, run.ID)
	if err != nil {
		return fmt.Errorf("query matches: %w", err)
	}
	defer matches.Close()
	for matches.Next() {
		var p string
		if err := matches.Scan(&p); err != nil {
			return fmt.Errorf("scan match: %w", err)
		}
		run.MatchPaths = append(run.MatchPaths, p)
	}
	if err := matches.Err(); err != nil {
		return fmt.Errorf("iterate matches: %w", err)
	}

	skipped, err := s.db.QueryContext(ctx, `SELECT path, COALESCE(reason, '') FROM run_skipped WHERE run_id = ? ORDER BY path`, run.ID)
	if err != nil {
		return fmt.Errorf("query skipped directories: %w", err)
	}
	defer skipped.Close()
	for skipped.Next() {
		var d models.SkippedDir
		if err := skipped.Scan(&d.Path, &d.Reason); err != nil {
			return fmt.Errorf("scan skipped directory: %w", err)
		}
		run.Skipped = append(run.Skipped, d)
	}
	if err := skipped.Err(); err != nil {
		return fmt.Errorf("iterate skipped directories: %w", err)
	}

	failures, err := s.db.QueryContext(ctx, `SELECT worker_id, message FROM run_failures WHERE run_id = ? ORDER BY worker_id`, run.ID)
	if err != nil {
		return fmt.Errorf("query worker failures: %w", err)
	}
	defer failures.Close()
	for failures.Next() {
		var f models.WorkerFailure
		if err := failures.Scan(&f.WorkerID, &f.Message); err != nil {
			return fmt.Errorf("scan worker failure: %w", err)
		}
		run.Failures = append(run.Failures, f)
	}
	if err := failures.Err(); err != nil {
		return fmt.Errorf("iterate worker failures: %w", err)
	}
	return nil
}

// Prune deletes runs started more than keepDays days ago and returns how
// many were removed. keepDays <= 0 keeps everything.
func (s *Store) Prune(ctx context.Context, keepDays int) (int64, error) {
	if keepDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -keepDays).UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Detail rows first; foreign_keys is off by default in SQLite
	for _, table := range []string{"run_matches", "run_skipped", "run_failures"} {
		q := fmt.Sprintf(`DELETE FROM %s WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, table)
		if _, err := tx.ExecContext(ctx, q, cutoff); err != nil {
			return 0, fmt.Errorf("prune %s: %w", table, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return n, nil
}
