package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/logdeck/internal/filter"
	"github.com/five82/logdeck/internal/logline"
)

const (
	timeLayout  = "15:04:05"
	levelWidth  = 7 // len("WARNING"), len("SUCCESS")
	sourceWidth = 18
	gutter      = " │ "
	jsonIndent  = "    "
)

// refreshContent re-applies the filter to the current snapshot and replaces
// the viewport content.
func (m *Model) refreshContent() {
	if !m.ready {
		return
	}
	m.viewport.Width = m.width - 2
	m.viewport.Height = m.contentHeight()

	entries := filter.Apply(m.snapshot.Entries, m.filter)
	m.visible = len(entries)
	m.viewport.SetContent(m.renderEntries(entries))
	if m.follow {
		m.viewport.GotoBottom()
	}
}

func (m Model) renderEntries(entries []logline.Entry) string {
	if len(entries) == 0 {
		if len(m.snapshot.Entries) == 0 {
			return m.styles.FaintText.Render("Waiting for log lines...")
		}
		return m.styles.FaintText.Render("No lines match the current filter.")
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, formatEntry(e, m.styles))
	}
	return strings.Join(lines, "\n")
}

// formatEntry renders one entry as "15:04:05 LEVEL source │ text". JSON
// entries put the opening line on the header and the rest of the indented
// document below it.
func formatEntry(e logline.Entry, styles Styles) string {
	var b strings.Builder
	b.WriteString(styles.Timestamp.Render(e.Timestamp.In(time.Local).Format(timeLayout)))
	b.WriteString(" ")
	b.WriteString(styles.Level(e.Level).Render(fmt.Sprintf("%-*s", levelWidth, strings.ToUpper(string(e.Level)))))
	b.WriteString(" ")
	b.WriteString(styles.Source.Render(fmt.Sprintf("%-*s", sourceWidth, truncate(sourceLabel(e), sourceWidth))))
	b.WriteString(styles.Gutter.Render(gutter))

	if !e.IsStructured() {
		b.WriteString(styles.Text.Render(e.Plain))
		return b.String()
	}

	body := highlightJSON(e, styles)
	b.WriteString(strings.ReplaceAll(body, "\n", "\n"+jsonIndent))
	return b.String()
}

// highlightJSON styles each token by class. Only unclassed tokens carry
// newlines and those are written as is: lipgloss pads multi-line strings.
func highlightJSON(e logline.Entry, styles Styles) string {
	var b strings.Builder
	for _, tok := range e.Structured {
		if st, ok := styles.Token(tok.Class); ok {
			b.WriteString(st.Render(tok.Text))
			continue
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}

func sourceLabel(e logline.Entry) string {
	if e.SourceName != "" {
		return e.SourceName
	}
	return logline.SourceName(e.SourceID)
}

// renderHeader renders the top line: logo, counts, filter and follow state.
func (m Model) renderHeader() string {
	s := m.styles
	level := strings.ToUpper(string(m.filter.Level))
	follow := "off"
	if m.follow {
		follow = "on"
	}

	parts := []string{
		s.Logo.Render("LOGDECK"),
		s.MutedText.Render(fmt.Sprintf("%d/%d lines (cap %d)", m.visible, len(m.snapshot.Entries), m.snapshot.Capacity)),
		s.MutedText.Render("level ") + s.Level(m.filter.Level).Render(level),
		s.MutedText.Render("follow " + follow),
	}
	if q := strings.TrimSpace(m.filter.Query); q != "" {
		parts = append(parts, s.AccentText.Render("search "+q))
	}
	return s.Header.Render(strings.Join(parts, "  "))
}

// renderSources lists the registry with the key that toggles each source.
// Only the first nine sources have keys.
func (m Model) renderSources() string {
	s := m.styles
	if len(m.snapshot.Sources) == 0 {
		return s.Footer.Render(s.FaintText.Render("no sources"))
	}
	parts := make([]string, 0, len(m.snapshot.Sources))
	for i, id := range m.snapshot.Sources {
		label := logline.SourceName(id)
		if i < 9 {
			label = fmt.Sprintf("%d %s", i+1, label)
		}
		style := s.InactiveSource
		if m.filter.HasSource(id) {
			style = s.ActiveSource
		}
		parts = append(parts, style.Render(" "+label+" "))
	}
	return s.Footer.Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
}

// renderStatus renders the bottom line: the search input while searching,
// otherwise the short help.
func (m Model) renderStatus() string {
	if m.searching {
		return m.styles.Footer.Render(m.search.View())
	}
	return m.styles.Footer.Render(m.help.View(m.keys))
}

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
