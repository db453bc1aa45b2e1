// Package config handles loading and parsing logdeck configuration files.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/logdeck/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// Command-line flags are applied on top of the result by the caller.
//
// # Default Values
//
//   - Config file: ~/.config/logdeck/config.toml
//   - max_lines: 1000
//   - log_level: info
//   - log_file: ~/.local/state/logdeck/logdeck.log
//   - listen: 127.0.0.1:9191
//   - source: stdin
//   - accept_levels: empty (store every level)
//
// # TOML Format
//
// Example config.toml:
//
//	max_lines = 2000
//	log_level = "debug"
//	listen = "127.0.0.1:9191"
//	source = "stdin"
//	accept_levels = ["error", "warning"]
//
// Every field is optional. Tilde expansion is performed on log_file and on
// any source other than stdin.
//
// # Validation
//
// Load rejects a negative max_lines and any accept_levels entry outside the
// closed level set. Zero max_lines means the default. An unknown log_level is
// not rejected here; the logging setup falls back to info and says so.
//
// # Error Handling
//
// Errors are wrapped with the failing step:
//
//   - "open config: ..." for permission problems
//   - "read config: ..." for I/O failures
//   - "parse config: ..." for TOML syntax, type and validation errors
//
// A missing file is not an error.
package config
