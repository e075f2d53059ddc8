// Package ui provides the Bubble Tea TUI for watching an export run.
//
// The model is deliberately small: one screen, a shots table between a
// status header and a key-hint footer, plus a help overlay. The runner
// publishes progress through a state.Store; the UI polls snapshots on a
// tick rather than receiving push messages, which keeps the runner free
// of any rendering dependency.
//
// Themes are cycled with T and persisted to the user's prefs file. The
// program exits on q or when the surrounding context is cancelled.
package ui
