package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/five82/logdeck/internal/logline"
)

func withLocal(t *testing.T, loc *time.Location) {
	t.Helper()
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
}

func TestFormatEntry_Plain(t *testing.T) {
	withLocal(t, time.UTC)
	styles := DefaultTheme().Styles()

	got := formatEntry(entry("/var/log/api.log", logline.LevelWarning, "disk at 91%"), styles)
	if !strings.HasPrefix(got, "03:04:05 WARNING api.log ") {
		t.Fatalf("formatEntry() = %q, want time, level and source prefix", got)
	}
	if !strings.HasSuffix(got, " │ disk at 91%") {
		t.Fatalf("formatEntry() = %q, want gutter and text suffix", got)
	}
}

func TestFormatEntry_PadsLevel(t *testing.T) {
	withLocal(t, time.UTC)
	styles := DefaultTheme().Styles()

	info := formatEntry(entry("a.log", logline.LevelInfo, "x"), styles)
	warn := formatEntry(entry("a.log", logline.LevelWarning, "x"), styles)
	if len(info) != len(warn) {
		t.Fatalf("level column not aligned:\n%q\n%q", info, warn)
	}
}

func TestFormatEntry_LocalTime(t *testing.T) {
	withLocal(t, time.FixedZone("UTC+2", 2*60*60))
	styles := DefaultTheme().Styles()

	got := formatEntry(entry("a.log", logline.LevelInfo, "x"), styles)
	if !strings.HasPrefix(got, "05:04:05 ") {
		t.Fatalf("formatEntry() = %q, want local time 05:04:05", got)
	}
}

func TestFormatEntry_JSON(t *testing.T) {
	withLocal(t, time.UTC)
	styles := DefaultTheme().Styles()

	got := formatEntry(entry("svc", logline.LevelInfo, `{"msg":"ok","n":1}`), styles)
	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("formatEntry() lines = %d, want 4:\n%s", len(lines), got)
	}
	if !strings.HasSuffix(lines[0], "│ {") {
		t.Fatalf("first line = %q, want opening brace after gutter", lines[0])
	}
	if lines[1] != jsonIndent+`  "msg": "ok",` {
		t.Fatalf("second line = %q", lines[1])
	}
	if lines[3] != jsonIndent+"}" {
		t.Fatalf("last line = %q, want indented closing brace", lines[3])
	}
}

func TestSourceLabel(t *testing.T) {
	tests := []struct {
		name  string
		entry logline.Entry
		want  string
	}{
		{"name set", logline.Entry{SourceID: "/a/b.log", SourceName: "b.log"}, "b.log"},
		{"derived", logline.Entry{SourceID: `C:\logs\c.log`}, "c.log"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sourceLabel(tt.entry); got != tt.want {
				t.Fatalf("sourceLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		value string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"much-too-long-name.log", 10, "much-to..."},
		{"abcdef", 3, "abc"},
		{"  padded  ", 0, "padded"},
	}
	for _, tt := range tests {
		if got := truncate(tt.value, tt.limit); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.value, tt.limit, got, tt.want)
		}
	}
}

func TestRenderSources(t *testing.T) {
	m := newReadyModel(t, seededStore())
	m, _ = press(t, m, "1")

	got := m.renderSources()
	if !strings.Contains(got, "1 api.log") || !strings.Contains(got, "2 worker.log") {
		t.Fatalf("renderSources() = %q, want numbered sources", got)
	}

	empty := newReadyModel(t, seededStore())
	empty.snapshot.Sources = nil
	if got := empty.renderSources(); !strings.Contains(got, "no sources") {
		t.Fatalf("renderSources() = %q, want placeholder", got)
	}
}

func TestRenderHeader(t *testing.T) {
	m := newReadyModel(t, seededStore())
	got := m.renderHeader()
	for _, want := range []string{"LOGDECK", "3/3 lines (cap 100)", "level ALL", "follow on"} {
		if !strings.Contains(got, want) {
			t.Fatalf("renderHeader() = %q, missing %q", got, want)
		}
	}
}
