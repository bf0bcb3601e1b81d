package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/RichardoC/athena/internal/models"
)

type palette struct {
	fg, dim, accent, user, assistant, border, mean, nice lipgloss.Color
}

var palettes = map[models.Theme]palette{
	models.ThemeDark: {
		fg:        "#e0e0e0",
		dim:       "#757575",
		accent:    "#ce93d8",
		user:      "#4fc3f7",
		assistant: "#ffb74d",
		border:    "#616161",
		mean:      "#ef5350",
		nice:      "#66bb6a",
	},
	models.ThemeLight: {
		fg:        "#212121",
		dim:       "#9e9e9e",
		accent:    "#6a1b9a",
		user:      "#0277bd",
		assistant: "#e65100",
		border:    "#bdbdbd",
		mean:      "#c62828",
		nice:      "#2e7d32",
	},
}

// styles is rebuilt whenever the theme changes.
type styles struct {
	text      lipgloss.Style
	dim       lipgloss.Style
	title     lipgloss.Style
	row       lipgloss.Style
	rowActive lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	pane      lipgloss.Style
	mean      lipgloss.Style
	nice      lipgloss.Style
	warn      lipgloss.Style
}

func newStyles(t models.Theme) styles {
	p, ok := palettes[t]
	if !ok {
		p = palettes[models.ThemeDark]
	}
	return styles{
		text:      lipgloss.NewStyle().Foreground(p.fg),
		dim:       lipgloss.NewStyle().Foreground(p.dim).Faint(true),
		title:     lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		row:       lipgloss.NewStyle().Foreground(p.fg).PaddingLeft(2),
		rowActive: lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		user:      lipgloss.NewStyle().Foreground(p.user).Bold(true),
		assistant: lipgloss.NewStyle().Foreground(p.assistant).Bold(true),
		pane:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.border).Padding(0, 1),
		mean:      lipgloss.NewStyle().Foreground(p.mean).Bold(true),
		nice:      lipgloss.NewStyle().Foreground(p.nice).Bold(true),
		warn:      lipgloss.NewStyle().Foreground(p.mean),
	}
}

func (s styles) mode(m models.Mode) lipgloss.Style {
	if m == models.ModeNice {
		return s.nice
	}
	return s.mean
}
