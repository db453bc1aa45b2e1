// Package filter computes the filtered view of buffered entries.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/five82/logdeck/internal/logline"
)

// LevelAll disables level filtering.
const LevelAll logline.Level = "all"

// State is the combination of the active level filter, the active source
// inclusion set and an optional text query. The zero value passes everything.
type State struct {
	Level   logline.Level
	sources map[string]struct{}
	Query   string
}

// ParseLevelFilter accepts "all" or a member of the closed level set. An
// empty string means all.
func ParseLevelFilter(s string) (logline.Level, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" || trimmed == string(LevelAll) {
		return LevelAll, nil
	}
	level, ok := logline.ParseLevel(trimmed)
	if !ok {
		return "", fmt.Errorf("unknown level filter %q", s)
	}
	return level, nil
}

// NewState returns a state filtering on level and the given sources.
func NewState(level logline.Level, sources ...string) State {
	st := State{Level: level}
	for _, id := range sources {
		if id == "" {
			continue
		}
		if st.sources == nil {
			st.sources = make(map[string]struct{})
		}
		st.sources[id] = struct{}{}
	}
	return st
}

// Toggle adds id to the source set when absent and removes it when present.
// It reports whether id is in the set afterwards.
func (s *State) Toggle(id string) bool {
	if _, ok := s.sources[id]; ok {
		delete(s.sources, id)
		return false
	}
	if s.sources == nil {
		s.sources = make(map[string]struct{})
	}
	s.sources[id] = struct{}{}
	return true
}

// ClearSources empties the source set.
func (s *State) ClearSources() {
	s.sources = nil
}

// HasSource reports whether id is in the source set.
func (s State) HasSource(id string) bool {
	_, ok := s.sources[id]
	return ok
}

// Sources returns the source set in sorted order.
func (s State) Sources() []string {
	if len(s.sources) == 0 {
		return nil
	}
	ids := make([]string, 0, len(s.sources))
	for id := range s.sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy.
func (s State) Clone() State {
	c := NewState(s.Level, s.Sources()...)
	c.Query = s.Query
	return c
}

// Matches reports whether e passes every active criterion. Multiple sources
// are an inclusion set: e passes when its source is any of them.
func (s State) Matches(e logline.Entry) bool {
	if s.Level != "" && s.Level != LevelAll && e.Level != s.Level {
		return false
	}
	if len(s.sources) > 0 {
		if _, ok := s.sources[e.SourceID]; !ok {
			return false
		}
	}
	if q := strings.TrimSpace(s.Query); q != "" {
		if !strings.Contains(strings.ToLower(e.RawLine), strings.ToLower(q)) {
			return false
		}
	}
	return true
}

// Apply returns the entries that match st, preserving their order. Neither
// entries nor st are modified.
func Apply(entries []logline.Entry, st State) []logline.Entry {
	out := make([]logline.Entry, 0, len(entries))
	for _, e := range entries {
		if st.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

var cycle = []logline.Level{
	LevelAll,
	logline.LevelError,
	logline.LevelWarning,
	logline.LevelInfo,
	logline.LevelDebug,
	logline.LevelSuccess,
}

// CycleLevel returns the level filter after current in the fixed rotation
// all, error, warning, info, debug, success.
func CycleLevel(current logline.Level) logline.Level {
	for i, level := range cycle {
		if level == current {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return cycle[1]
}
