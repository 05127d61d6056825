package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Spacing constants for consistent layout (in characters)
const (
	SpaceXS = 1
	SpaceSM = 2
	SpaceMD = 3
)

// Glyphs used by the navigation chrome.
const (
	glyphPrev      = "‹"
	glyphNext      = "›"
	glyphDotActive = "●"
	glyphDot       = "○"
)

// Panel sizing: the slide panel is centred and capped so long lines stay
// readable on wide terminals.
const (
	maxPanelWidth = 100
	minPanelWidth = 30
	arrowGutter   = 2 // arrow column + gap, each side
)

// panelStyle frames the slide body.
func (t Theme) panelStyle() lipgloss.Style {
	return t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
}

// cardStyle frames one card; highlighted cards use the accent border.
func (t Theme) cardStyle(highlight bool) lipgloss.Style {
	border := t.Border
	if highlight {
		border = t.Primary
	}
	return t.Renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

// RenderDivider renders a horizontal divider line
func (t Theme) RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return t.Renderer.NewStyle().
		Foreground(t.Border).
		Render(strings.Repeat("─", width))
}

// RenderProgress renders a compact deck progress bar, e.g. ███░░░░░░░.
func (t Theme) RenderProgress(index, total, width int) string {
	if width <= 0 || total <= 0 {
		return ""
	}
	filled := ((index + 1) * width) / total
	if filled < 1 {
		filled = 1
	}
	if filled > width {
		filled = width
	}
	return t.Renderer.NewStyle().Foreground(t.Primary).Render(strings.Repeat("█", filled)) +
		t.Renderer.NewStyle().Foreground(t.Muted).Render(strings.Repeat("░", width-filled))
}
