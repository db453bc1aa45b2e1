// Package classify assigns a severity level to a raw log line.
package classify

import (
	"strings"
	"unicode"

	"github.com/five82/logdeck/internal/logline"
)

// rule binds a level to the words that indicate it.
type rule struct {
	level    logline.Level
	keywords []string
}

// rules is ordered by priority. The first rule with any matching word wins.
var rules = []rule{
	{logline.LevelError, []string{"error", "err", "fatal", "critical", "exception"}},
	{logline.LevelWarning, []string{"warning", "warn"}},
	{logline.LevelSuccess, []string{"success", "ok", "passed"}},
	{logline.LevelDebug, []string{"debug", "trace"}},
	{logline.LevelInfo, []string{"info", "information"}},
}

// Default is the level of a line with no hint and no keyword.
const Default = logline.LevelInfo

// Classify returns the level for raw. A hint that names a member of the
// closed level set wins outright; otherwise raw is scanned for keywords.
func Classify(raw, hint string) logline.Level {
	if level, ok := logline.ParseLevel(hint); ok {
		return level
	}
	return Scan(raw)
}

// inflected keywords also match in plural form and as a part of a CamelCase
// identifier, as in "errors" or "NullPointerException".
var inflected = map[string]bool{
	"error":     true,
	"exception": true,
	"fatal":     true,
	"warning":   true,
}

// Scan matches whole words of raw, case-insensitively, against the keyword
// table and resolves ties by priority. Inflected keywords also match their
// plural and CamelCase forms; everything else must match the word exactly.
func Scan(raw string) logline.Level {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(raw, notWordRune) {
		lower := strings.ToLower(w)
		words[lower] = struct{}{}
		if stem, ok := strings.CutSuffix(lower, "s"); ok && inflected[stem] {
			words[stem] = struct{}{}
		}
		for _, part := range camelParts(w) {
			part = strings.TrimSuffix(strings.ToLower(part), "s")
			if inflected[part] {
				words[part] = struct{}{}
			}
		}
	}
	if len(words) == 0 {
		return Default
	}

	for _, r := range rules {
		for _, kw := range r.keywords {
			if _, ok := words[kw]; ok {
				return r.level
			}
		}
	}
	return Default
}

// camelParts splits w at case boundaries: "IOError" gives "IO", "Error".
func camelParts(w string) []string {
	runes := []rune(w)
	var parts []string
	start := 0
	for i := 1; i < len(runes); i++ {
		if !unicode.IsUpper(runes[i]) {
			continue
		}
		afterLower := unicode.IsLower(runes[i-1])
		acronymEnd := unicode.IsUpper(runes[i-1]) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
		if afterLower || acronymEnd {
			parts = append(parts, string(runes[start:i]))
			start = i
		}
	}
	return append(parts, string(runes[start:]))
}

func notWordRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
