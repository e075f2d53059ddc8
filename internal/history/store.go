package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; old databases must be deleted after a bump.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Run statuses recorded in the database.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is one recorded export run.
type Run struct {
	ID           string
	ShowID       int64
	EpisodeID    int64
	SequenceID   int64
	Revision     int64
	SequenceName string
	Status       string
	StartedAt    time.Time
	FinishedAt   time.Time
	HasFinished  bool
}

// ShotResult is the recorded outcome for a single shot within a run.
type ShotResult struct {
	Name          string
	PanelCount    int
	ChainID       int64
	MediaObjectID int64
	Status        string
	Error         string
}

// Store persists export run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun records the start of an export run and returns its generated ID.
func (s *Store) BeginRun(ctx context.Context, run Run) (string, error) {
	id := uuid.NewString()
	started := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, show_id, episode_id, sequence_id, revision, sequence_name, status, started_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, run.ShowID, run.EpisodeID, run.SequenceID, run.Revision, run.SequenceName, RunStatusRunning, started,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RecordShot upserts the outcome of one shot within a run.
func (s *Store) RecordShot(ctx context.Context, runID string, shot ShotResult) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO run_shots (run_id, name, panel_count, chain_id, media_object_id, status, error)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(run_id, name) DO UPDATE SET
             panel_count = excluded.panel_count,
             chain_id = excluded.chain_id,
             media_object_id = excluded.media_object_id,
             status = excluded.status,
             error = excluded.error`,
		runID, shot.Name, shot.PanelCount, shot.ChainID, shot.MediaObjectID, shot.Status, shot.Error,
	)
	if err != nil {
		return fmt.Errorf("record shot %s: %w", shot.Name, err)
	}
	return nil
}

// FinishRun marks a run terminal with the given status.
func (s *Store) FinishRun(ctx context.Context, runID, status string) error {
	finished := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET status = ?, finished_at = ? WHERE id = ?`,
		status, finished, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: unknown run %s", runID)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, show_id, episode_id, sequence_id, revision, sequence_name, status, started_at, finished_at
         FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// RunShots returns the recorded shots for a run in name order.
func (s *Store) RunShots(ctx context.Context, runID string) ([]ShotResult, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT name, panel_count, chain_id, media_object_id, status, error
         FROM run_shots WHERE run_id = ? ORDER BY name`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list run shots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var shots []ShotResult
	for rows.Next() {
		var shot ShotResult
		if err := rows.Scan(&shot.Name, &shot.PanelCount, &shot.ChainID, &shot.MediaObjectID, &shot.Status, &shot.Error); err != nil {
			return nil, fmt.Errorf("scan shot: %w", err)
		}
		shots = append(shots, shot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shots: %w", err)
	}
	return shots, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var (
		run        Run
		startedAt  string
		finishedAt sql.NullString
	)
	if err := rows.Scan(&run.ID, &run.ShowID, &run.EpisodeID, &run.SequenceID, &run.Revision,
		&run.SequenceName, &run.Status, &startedAt, &finishedAt); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}

	started, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	run.StartedAt = started

	if finishedAt.Valid && finishedAt.String != "" {
		finished, err := time.Parse(time.RFC3339Nano, finishedAt.String)
		if err != nil {
			return Run{}, fmt.Errorf("parse finished_at %q: %w", finishedAt.String, err)
		}
		run.FinishedAt = finished
		run.HasFinished = true
	}
	return run, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
