package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile. Computed once at
// package init so every style helper can branch without re-detecting.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeFg returns the given hex color for ANSI256+ terminals and a safe
// ANSI white (color 7) for 16-color or lower terminals.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// RichText reports whether the terminal can show styled markdown. Plain
// terminals and pipes get the span renderer instead.
func RichText() bool {
	return TermProfile >= colorprofile.ANSI
}

// Theme is the palette and pre-built styles for the presenter.
type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor // deck accent
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Styles
	Base        lipgloss.Style
	Header      lipgloss.Style
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Emphasis    lipgloss.Style
	MutedText   lipgloss.Style
	ErrorText   lipgloss.Style
	Background  lipgloss.Style // decorative field cells
	ActiveDot   lipgloss.Style
	InactiveDot lipgloss.Style
	Arrow       lipgloss.Style
	Button      lipgloss.Style
}

// DefaultTheme returns the space-purple theme (adaptive).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	return NewTheme(r, lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#9E77ED"})
}

// NewTheme builds a theme around an accent colour.
func NewTheme(r *lipgloss.Renderer, accent lipgloss.AdaptiveColor) Theme {
	t := Theme{
		Renderer: r,

		Primary:   accent,
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Success:   lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Danger:    lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#3A3B4A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E8DDFF", Dark: "#2A1A44"},
		Muted:     lipgloss.AdaptiveColor{Light: "#888888", Dark: "#4B4E6D"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"})

	t.Header = r.NewStyle().
		Foreground(t.Primary).
		Bold(true)

	t.Title = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.Subtitle = r.NewStyle().Foreground(t.Subtext).Italic(true)
	t.Emphasis = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.MutedText = r.NewStyle().Foreground(t.Subtext)
	t.ErrorText = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.Background = r.NewStyle().Foreground(t.Muted)
	t.ActiveDot = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.InactiveDot = r.NewStyle().Foreground(t.Muted)
	t.Arrow = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.Button = r.NewStyle().
		Foreground(ThemeFg("#FFFFFF")).
		Background(t.Primary).
		Bold(true)

	return t
}

// WithAccent returns a copy of the theme using hex as the accent. An empty
// hex keeps the current accent.
func (t Theme) WithAccent(hex string) Theme {
	if hex == "" {
		return t
	}
	return NewTheme(t.Renderer, lipgloss.AdaptiveColor{Light: hex, Dark: hex})
}

// SeriesColor picks a bar colour per chart field: accent first, then loss red.
func (t Theme) SeriesColor(i int) lipgloss.AdaptiveColor {
	switch i % 3 {
	case 0:
		return t.Primary
	case 1:
		return t.Danger
	default:
		return t.Success
	}
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
