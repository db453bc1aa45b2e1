package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// startSearch opens the search input, seeded with the active query.
func (m Model) startSearch() (tea.Model, tea.Cmd) {
	m.searching = true
	m.search.SetValue(m.filter.Query)
	m.search.CursorEnd()
	cmd := m.search.Focus()
	return m, cmd
}

// handleSearchKey filters as the user types. Enter keeps the query, esc
// drops it.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.Confirm):
		m.searching = false
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		m.clearSearch()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.filter.Query {
		m.filter.Query = m.search.Value()
		m.refreshContent()
	}
	return m, cmd
}

func (m *Model) clearSearch() {
	m.searching = false
	m.search.Blur()
	m.search.SetValue("")
	m.filter.Query = ""
	m.refreshContent()
}
