// Package history persists export run records backed by SQLite.
//
// Each export run gets a UUID and a row in the runs table; per-shot
// outcomes land in run_shots keyed by (run_id, name) so retries upsert
// rather than duplicate. The database lives at <data_dir>/history.db and
// uses WAL journaling with a busy timeout so a concurrent history listing
// does not block an in-flight run.
//
// The schema carries a version guard. On mismatch Open fails with
// ErrSchemaMismatch and the remedy is deleting the database file; history
// is a convenience record, not authoritative production data.
package history
