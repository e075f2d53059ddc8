// Package state provides thread-safe run state shared between the export
// runner and the UI.
//
// # Overview
//
// The Store is the coordination point where per-shot export progress meets
// UI rendering. The runner updates shot statuses as chains move through
// their lifecycle; the UI refresh loop reads immutable snapshots.
//
// # Concurrency Model
//
// The Store uses a readers-writer lock:
//
//   - Begin/UpdateShot/Fail/Finish: write lock (exclusive)
//   - Snapshot: read lock (concurrent reads allowed)
//
// The lock is held only during copy operations, never during network I/O
// or rendering.
//
// # Defensive Copying
//
// Snapshot performs deep copies so the UI and the runner never share
// mutable slices or error instances. Shot slices are cloned and error
// values are rewrapped, which prevents concurrent modification and
// accidental mutation of displayed data.
//
// # Shot Lifecycle
//
// Each shot moves through the phases:
//
//	pending → submitting → rendering → completed
//	                              ↘ failed
//
// Failed shots record the error on the ShotStatus itself; run-level
// failures (login, revision fetch) go through Fail and land in
// Snapshot.LastError while per-shot data is preserved.
package state
