// Package logging configures the package-level logrus logger.
//
// Entries are JSON with a "2006-01-02 15:04:05" timestamp and the caller as
// file.go:line. Setup sends them to a log file, creating its directory, or
// to stderr when no file is given. An unknown level falls back to info.
package logging
