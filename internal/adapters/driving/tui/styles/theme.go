// Package styles holds the lipgloss palette shared by TUI views.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the colour palette.
type Theme struct {
	Accent  lipgloss.Color
	Link    lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Score   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Border  lipgloss.Color
	Bar     lipgloss.Color
}

// DefaultTheme returns the ink-on-paper palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:  lipgloss.Color("#5B6CFF"),
		Link:    lipgloss.Color("#38BDF8"),
		Text:    lipgloss.Color("#E4E4E7"),
		Muted:   lipgloss.Color("#71717A"),
		Score:   lipgloss.Color("#FBBF24"),
		Success: lipgloss.Color("#4ADE80"),
		Warning: lipgloss.Color("#FB923C"),
		Error:   lipgloss.Color("#F87171"),
		Border:  lipgloss.Color("#3F3F46"),
		Bar:     lipgloss.Color("#18181B"),
	}
}

// Styles are the rendered styles derived from a Theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Score    lipgloss.Style
	Link     lipgloss.Style
	Spinner  lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style

	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Border     lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme uses DefaultTheme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title:    lipgloss.NewStyle().Bold(true).Foreground(theme.Accent),
		Subtitle: lipgloss.NewStyle().Bold(true).Foreground(theme.Link),
		Normal:   lipgloss.NewStyle().Foreground(theme.Text),
		Muted:    lipgloss.NewStyle().Foreground(theme.Muted),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(theme.Text).Background(theme.Accent),
		Score:    lipgloss.NewStyle().Foreground(theme.Score),
		Link:     lipgloss.NewStyle().Foreground(theme.Link).Underline(true),
		Spinner:  lipgloss.NewStyle().Foreground(theme.Accent),

		Error:   lipgloss.NewStyle().Foreground(theme.Error),
		Success: lipgloss.NewStyle().Foreground(theme.Success),
		Warning: lipgloss.NewStyle().Foreground(theme.Warning),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Bar).
			Padding(0, 1),

		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// SyncStatus picks the style for an integration status label.
func (s *Styles) SyncStatus(status string) lipgloss.Style {
	switch status {
	case "success":
		return s.Success
	case "syncing":
		return s.Warning
	case "error":
		return s.Error
	default:
		return s.Muted
	}
}
