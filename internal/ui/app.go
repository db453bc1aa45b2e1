package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/logdeck/internal/filter"
	"github.com/five82/logdeck/internal/state"
)

const defaultPollTick = 200 * time.Millisecond

// Options configures the UI.
type Options struct {
	Store    *state.Store
	Filter   filter.State
	PollTick time.Duration
	// InputTTY reads keys from the controlling terminal instead of stdin,
	// which is needed when stdin carries the log stream.
	InputTTY bool
}

// Model is the root application state for Bubble Tea.
type Model struct {
	store    *state.Store
	pollTick time.Duration

	// UI state
	theme    Theme
	styles   Styles
	keys     keyMap
	help     help.Model
	width    int
	height   int
	ready    bool
	showHelp bool

	// Data state
	snapshot state.Snapshot
	version  uint64
	visible  int

	// Log state
	filter    filter.State
	follow    bool
	viewport  viewport.Model
	searching bool
	search    textinput.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = defaultPollTick
	}

	ti := textinput.New()
	ti.Placeholder = "Search lines..."
	ti.Prompt = "/"
	ti.CharLimit = 200

	theme := DefaultTheme()
	st := opts.Filter.Clone()
	if st.Level == "" {
		st.Level = filter.LevelAll
	}
	return Model{
		store:    opts.Store,
		pollTick: pollTick,
		theme:    theme,
		styles:   theme.Styles(),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		filter:   st,
		follow:   true,
		search:   ti,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(m.width-2, m.contentHeight())
			m.ready = true
		}
		m.help.Width = m.width
		m.refreshContent()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.version = m.snapshot.Version
		m.refreshContent()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderSources())
	b.WriteString("\n")
	b.WriteString(m.styles.Box.Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

// contentHeight is the viewport height: header, source bar, two border rows
// and the status line are subtracted.
func (m Model) contentHeight() int {
	h := m.height - 5
	if h < 1 {
		h = 1
	}
	return h
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleLevel):
		m.filter.Level = filter.CycleLevel(m.filter.Level)
		m.refreshContent()
		return m, nil

	case key.Matches(msg, m.keys.ToggleSource):
		m.toggleNthSource(int(msg.String()[0] - '0'))
		return m, nil

	case key.Matches(msg, m.keys.ClearSources):
		m.filter.ClearSources()
		m.refreshContent()
		return m, nil

	case key.Matches(msg, m.keys.ClearBuffer):
		m.filter.ClearSources()
		if m.store == nil {
			return m, nil
		}
		m.store.Clear()
		return m, fetchSnapshotCmd(m.store)

	case key.Matches(msg, m.keys.ToggleFollow):
		m.follow = !m.follow
		if m.follow {
			m.viewport.GotoBottom()
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		return m.startSearch()

	case key.Matches(msg, m.keys.Escape):
		if m.filter.Query != "" {
			m.clearSearch()
		}
		return m, nil
	}

	return m.handleScrollKey(msg)
}

// handleScrollKey moves the viewport. Scrolling away from the bottom stops
// following; reaching it again resumes.
func (m Model) handleScrollKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.viewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.viewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.PageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.viewport.HalfPageUp()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.viewport.HalfPageDown()
	default:
		return m, nil
	}
	m.follow = m.viewport.AtBottom()
	return m, nil
}

// toggleNthSource toggles the n-th (1-based) source of the registry.
func (m *Model) toggleNthSource(n int) {
	sources := m.snapshot.Sources
	if n < 1 || n > len(sources) {
		return
	}
	m.filter.Toggle(sources[n-1])
	m.refreshContent()
}

// handleTick fetches a snapshot only when the store has changed.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.stale() {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) stale() bool {
	return m.store != nil && m.store.Version() != m.version
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Store == nil {
		return errors.New("ui requires a data store")
	}

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.InputTTY {
		programOpts = append(programOpts, tea.WithInputTTY())
	}
	p := tea.NewProgram(New(opts), programOpts...)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			p.Quit()
		case <-done:
		}
	}()

	_, err := p.Run()
	return err
}
