package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/logdeck/internal/logline"
	"github.com/five82/logdeck/internal/render"
)

// Theme defines the viewer's colors. There is one fixed palette.
type Theme struct {
	// Base colors
	Background string
	Surface    string
	FocusBg    string

	// Border colors
	Border      string
	BorderFocus string

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string
	Debug   string

	// JSON token colors
	Key     string
	String  string
	Number  string
	Boolean string
	Null    string
}

// DefaultTheme returns the Dracula palette.
func DefaultTheme() Theme {
	return Theme{
		Background: "#191A21",
		Surface:    "#282A36",
		FocusBg:    "#343746",

		Border:      "#44475A",
		BorderFocus: "#BD93F9",

		Text:    "#F8F8F2",
		Muted:   "#BFBFBF",
		Faint:   "#6272A4",
		Accent:  "#BD93F9",
		Success: "#50FA7B",
		Warning: "#F1FA8C",
		Danger:  "#FF5555",
		Info:    "#8BE9FD",
		Debug:   "#6272A4",

		Key:     "#FF79C6",
		String:  "#F1FA8C",
		Number:  "#BD93F9",
		Boolean: "#FFB86C",
		Null:    "#6272A4",
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text       lipgloss.Style
	MutedText  lipgloss.Style
	FaintText  lipgloss.Style
	AccentText lipgloss.Style
	DangerText lipgloss.Style

	Logo      lipgloss.Style
	Header    lipgloss.Style
	Footer    lipgloss.Style
	Box       lipgloss.Style
	Timestamp lipgloss.Style
	Source    lipgloss.Style
	Gutter    lipgloss.Style

	ActiveSource   lipgloss.Style
	InactiveSource lipgloss.Style

	levels map[logline.Level]lipgloss.Style
	tokens map[render.Class]lipgloss.Style
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	fg := func(c string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
	}
	return Styles{
		Text:       fg(t.Text),
		MutedText:  fg(t.Muted),
		FaintText:  fg(t.Faint),
		AccentText: fg(t.Accent),
		DangerText: fg(t.Danger).Bold(true),

		Logo: fg(t.Accent).Bold(true),
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
		Footer: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)),
		Timestamp: fg(t.Faint),
		Source:    fg(t.Info),
		Gutter:    fg(t.Border),

		ActiveSource:   fg(t.Background).Background(lipgloss.Color(t.Accent)).Bold(true),
		InactiveSource: fg(t.Muted),

		levels: map[logline.Level]lipgloss.Style{
			logline.LevelError:   fg(t.Danger).Bold(true),
			logline.LevelWarning: fg(t.Warning).Bold(true),
			logline.LevelInfo:    fg(t.Info).Bold(true),
			logline.LevelDebug:   fg(t.Debug).Bold(true),
			logline.LevelSuccess: fg(t.Success).Bold(true),
		},
		tokens: map[render.Class]lipgloss.Style{
			render.ClassKey:     fg(t.Key),
			render.ClassString:  fg(t.String),
			render.ClassNumber:  fg(t.Number),
			render.ClassBoolean: fg(t.Boolean),
			render.ClassNull:    fg(t.Null).Italic(true),
		},
	}
}

// Level returns the badge style for level.
func (s Styles) Level(level logline.Level) lipgloss.Style {
	if st, ok := s.levels[level]; ok {
		return st
	}
	return s.Text
}

// Token returns the style for a JSON token class. ClassNone renders unstyled.
func (s Styles) Token(class render.Class) (lipgloss.Style, bool) {
	st, ok := s.tokens[class]
	return st, ok
}
