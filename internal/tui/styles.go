package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sunoctl/sunoctl/internal/monitor"
)

type styles struct {
	title       lipgloss.Style
	label       lipgloss.Style
	focused     lipgloss.Style
	muted       lipgloss.Style
	success     lipgloss.Style
	failure     lipgloss.Style
	warning     lipgloss.Style
	panel       lipgloss.Style
	simulation  lipgloss.Style
	stateBadges map[monitor.State]lipgloss.Style
}

func newStyles() styles {
	green := lipgloss.AdaptiveColor{Light: "#0a7d32", Dark: "#3ddc84"}
	red := lipgloss.AdaptiveColor{Light: "#b3261e", Dark: "#ff6b6b"}
	amber := lipgloss.AdaptiveColor{Light: "#9a6700", Dark: "#ffd166"}
	blue := lipgloss.AdaptiveColor{Light: "#0b57d0", Dark: "#7cacf8"}
	grey := lipgloss.AdaptiveColor{Light: "#5f6368", Dark: "#9aa0a6"}

	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#101010"))

	return styles{
		title:      lipgloss.NewStyle().Bold(true).Foreground(blue),
		label:      lipgloss.NewStyle().Bold(true),
		focused:    lipgloss.NewStyle().Bold(true).Foreground(blue),
		muted:      lipgloss.NewStyle().Foreground(grey),
		success:    lipgloss.NewStyle().Foreground(green),
		failure:    lipgloss.NewStyle().Foreground(red),
		warning:    lipgloss.NewStyle().Foreground(amber),
		panel:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(grey).Padding(0, 1),
		simulation: badge.Background(lipgloss.Color("#c58af9")),
		stateBadges: map[monitor.State]lipgloss.Style{
			monitor.Checking:             badge.Background(grey),
			monitor.Offline:              badge.Background(red),
			monitor.ConnectedNoSession:   badge.Background(amber),
			monitor.ConnectedWithSession: badge.Background(green),
		},
	}
}

func (s styles) badge(state monitor.State) string {
	style, ok := s.stateBadges[state]
	if !ok {
		style = s.stateBadges[monitor.Checking]
	}

	return style.Render(state.Label())
}
