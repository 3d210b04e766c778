// Package tui holds the terminal screens of the deck CLI: the slide presenter
// and the reports manager.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"pmp-reports/internal/render"
)

var (
	colorInk     = lipgloss.Color("#1F2937")
	colorMuted   = lipgloss.Color("#6B7280")
	colorAccent  = lipgloss.Color("#2563EB")
	colorDanger  = lipgloss.Color("#DC2626")
	colorWarning = lipgloss.Color("#D97706")
	colorSuccess = lipgloss.Color("#16A34A")
	colorWhite   = lipgloss.Color("#FFFFFF")
)

// Styles terminal styles shared by both screens
type Styles struct {
	Header   lipgloss.Style
	Subtitle lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Card     lipgloss.Style
	CardHead lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Group    lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Confirm  lipgloss.Style
	Copied   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(colorWhite).Background(colorInk).Padding(0, 1),
		Subtitle: lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
		Label:    lipgloss.NewStyle().Foreground(colorMuted),
		Value:    lipgloss.NewStyle().Foreground(colorInk).Bold(true),
		Card:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1),
		CardHead: lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(colorMuted),
		Selected: lipgloss.NewStyle().Foreground(colorWhite).Background(colorAccent),
		Group:    lipgloss.NewStyle().Bold(true),
		Status:   lipgloss.NewStyle().Foreground(colorMuted),
		Error:    lipgloss.NewStyle().Foreground(colorDanger),
		Confirm:  lipgloss.NewStyle().Bold(true).Foreground(colorWarning),
		Copied:   lipgloss.NewStyle().Bold(true).Foreground(colorSuccess),
	}
}

// Badge pill coloured by tone
func (s Styles) Badge(b *render.Badge) string {
	if b == nil {
		return ""
	}
	bg := colorMuted
	switch b.Tone {
	case render.ToneDanger:
		bg = colorDanger
	case render.ToneWarning:
		bg = colorWarning
	case render.ToneSuccess:
		bg = colorSuccess
	}
	return lipgloss.NewStyle().Foreground(colorWhite).Background(bg).Padding(0, 1).Render(b.Text)
}
