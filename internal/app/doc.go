// Package app wires configuration, the Flix client, run history, and the
// UI into an export run.
//
// # Overview
//
// Run is the boot path used by the export command: load config, log in,
// resolve the target sequence, then hand the run to a Runner. The Runner
// splits the sequence revision into shots by its markers and drives one
// quicktime export per shot, strictly in order.
//
// # Data Flow
//
//	Runner (background goroutine):        UI (owns terminal):
//	┌─────────────────────────┐          ┌──────────────────┐
//	│ SequenceRevision()      │          │                  │
//	│ Panels()                │          │                  │
//	│ per shot:               │          │                  │
//	│   Submit() → Watch()    │──store──→│ Snapshot()       │
//	│   UpdateShot()          │ (mutex)  │ render table     │
//	│ history.RecordShot()    │          │                  │
//	└─────────────────────────┘          └──────────────────┘
//
// In plain mode the UI is skipped and Run blocks until the report is
// complete.
//
// # Failure Semantics
//
// A shot that fails to submit or whose chain errors is recorded as failed
// and the run moves to the next shot. Only timeline fetch failures and
// context cancellation abort the whole run. History writes never fail a
// run; they are logged and dropped.
package app
