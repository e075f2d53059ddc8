// Package config handles loading and parsing the flix tool configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/flix/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// A missing config file is NOT an error; missing credentials only become an
// error when a command that talks to the service checks RequireCredentials.
//
// # TOML Format
//
// Example config.toml:
//
//	hostname = "flix.example.com:8080"
//	username = "alice"
//	password = "hunter2"
//	data_dir = "~/.local/share/flix"
//	poll_seconds = 1
//	include_dialogue = false
//
// All fields are optional. Tilde expansion is performed automatically. The
// FLIX_PASSWORD environment variable overrides the file's password so the
// secret can stay off disk.
//
// # Derived Paths
//
//   - History database: <data_dir>/history.db
//   - Log file: <data_dir>/flix.log
//
// # Error Handling
//
// Load returns errors for path expansion failures, file read errors (except
// os.ErrNotExist, which triggers defaults), and TOML parsing errors.
package config
