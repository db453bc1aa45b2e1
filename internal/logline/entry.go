// Package logline defines the log entry model shared by the store, the
// ingestion gateway and every presentation surface.
package logline

import (
	"strings"
	"time"

	"github.com/five82/logdeck/internal/render"
)

// Level is the severity of a log line. The set is closed: see Levels.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
	LevelDebug   Level = "debug"
	LevelSuccess Level = "success"
)

// Levels lists every member of the closed level set in display order.
var Levels = []Level{LevelError, LevelWarning, LevelInfo, LevelDebug, LevelSuccess}

// ParseLevel trims s and matches it case-insensitively against the closed set.
func ParseLevel(s string) (Level, bool) {
	candidate := Level(strings.ToLower(strings.TrimSpace(s)))
	for _, level := range Levels {
		if candidate == level {
			return level, true
		}
	}
	return "", false
}

// Valid reports whether l is a member of the closed set.
func (l Level) Valid() bool {
	for _, level := range Levels {
		if l == level {
			return true
		}
	}
	return false
}

// Entry is one processed log line. Entries are values; the store copies
// Structured on the way in and on the way out.
type Entry struct {
	SourceID   string         `json:"sourceId"`
	SourceName string         `json:"sourceName"`
	RawLine    string         `json:"rawLine"`
	Level      Level          `json:"level"`
	Timestamp  time.Time      `json:"timestamp"`
	Sequence   uint64         `json:"sequence"`
	LineNumber int            `json:"lineNumber"`
	Plain      string         `json:"renderedPlain"`
	Structured []render.Token `json:"renderedStructured,omitempty"`
}

// IsStructured reports whether the raw line was valid JSON.
func (e Entry) IsStructured() bool {
	return len(e.Structured) > 0
}

// SourceName returns the last path segment of id, accepting both / and \
// separators. Trailing separators are ignored.
func SourceName(id string) string {
	trimmed := strings.TrimRight(id, `/\`)
	if trimmed == "" {
		return id
	}
	if idx := strings.LastIndexAny(trimmed, `/\`); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
