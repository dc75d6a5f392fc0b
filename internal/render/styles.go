package render

import (
	"io"

	"cropsense/internal/storage"

	"github.com/charmbracelet/lipgloss"
)

var (
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#43a047")
	Warning     = lipgloss.Color("#ffb300")
)

// Theme holds the current color scheme
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	IsDark     bool
}

func LightTheme() Theme {
	return Theme{
		Foreground: lipgloss.Color("#1b2a1f"),
		Primary:    lipgloss.Color("#2e7d32"),
		Muted:      lipgloss.Color("#6b7a70"),
		Border:     lipgloss.Color("#c8d6cc"),
	}
}

func DarkTheme() Theme {
	return Theme{
		Foreground: lipgloss.Color("#eef3ef"),
		Primary:    lipgloss.Color("#8bc34a"),
		Muted:      lipgloss.Color("#9aa8a0"),
		Border:     lipgloss.Color("#2f3d33"),
		IsDark:     true,
	}
}

// ThemeFor maps the stored theme preference to a Theme
func ThemeFor(name string) Theme {
	if name == storage.ThemeDark {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds the styled components used by cards
type Styles struct {
	Theme Theme

	Card    lipgloss.Style
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Badge   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// NewStyles builds styles bound to w, so color is only emitted when w is a terminal
func NewStyles(w io.Writer, theme Theme) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Theme: theme,

		Card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Title: r.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Label: r.NewStyle().
			Foreground(theme.Muted),

		Value: r.NewStyle().
			Foreground(theme.Foreground).
			Bold(true),

		Muted: r.NewStyle().
			Foreground(theme.Muted).
			Italic(true),

		Badge: r.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Success: r.NewStyle().Foreground(Success).Bold(true),
		Warning: r.NewStyle().Foreground(Warning).Bold(true),
		Error:   r.NewStyle().Foreground(Destructive).Bold(true),
	}
}

// Level picks the status style for a Low/Medium/High label
func (s Styles) Level(level string) lipgloss.Style {
	switch level {
	case "High", "Critical":
		return s.Error
	case "Medium":
		return s.Warning
	default:
		return s.Success
	}
}
