package console

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorSecondary = lipgloss.Color("#10B981")
	colorAccent    = lipgloss.Color("#F59E0B")
	colorError     = lipgloss.Color("#EF4444")
	colorMuted     = lipgloss.Color("#6B7280")
)

// Styles used by the console. Plain styles render text unchanged.
type Styles struct {
	Banner  lipgloss.Style
	Prompt  lipgloss.Style
	Value   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Muted   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, color bool) Styles {
	if !color {
		plain := r.NewStyle()
		return Styles{
			Banner:  plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
			Prompt:  plain,
			Value:   plain,
			Error:   plain,
			Warning: plain,
			Muted:   plain,
		}
	}

	return Styles{
		Banner: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1),

		Prompt: r.NewStyle().
			Foreground(colorPrimary).
			Bold(true),

		Value: r.NewStyle().
			Foreground(colorSecondary),

		Error: r.NewStyle().
			Foreground(colorError),

		Warning: r.NewStyle().
			Foreground(colorAccent),

		Muted: r.NewStyle().
			Foreground(colorMuted).
			Italic(true),
	}
}
